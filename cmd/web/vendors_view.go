package main

import (
	"html/template"
	"strings"

	"github.com/SeanAllesina-McGrory/Food-Truck-Finder/internal/catalog"
)

// VendorsView is the vendor directory and its htmx list fragment.
type VendorsView struct {
	Query string
	Type  string
	Types []TypeOption
	Cards []VendorCard
	Shown int
	Total int
}

type TypeOption struct {
	Value    string
	Label    string
	Selected bool
}

type VendorCard struct {
	Key         string
	Name        string
	Type        string
	Description template.HTML
	Website     string
	Email       string
	Phone       string
	ManageHref  string
}

func buildVendorsView(vendors []catalog.Vendor, query, vendorType string, manageHref func(string) string) VendorsView {
	query = strings.TrimSpace(query)
	vendorType = strings.TrimSpace(vendorType)
	view := VendorsView{Query: query, Type: vendorType, Total: len(vendors)}

	for _, t := range catalog.Types(vendors) {
		view.Types = append(view.Types, TypeOption{
			Value:    t,
			Label:    catalog.TypeLabel(t),
			Selected: strings.EqualFold(t, vendorType),
		})
	}
	for _, v := range catalog.Search(vendors, query, vendorType) {
		view.Cards = append(view.Cards, VendorCard{
			Key:         v.Key(),
			Name:        v.DisplayName(),
			Type:        catalog.TypeLabel(v.Type),
			Description: catalog.RenderMarkdown(v.Description),
			Website:     v.Website,
			Email:       v.Email,
			Phone:       v.Phone,
			ManageHref:  manageHref(v.Key()),
		})
	}
	view.Shown = len(view.Cards)
	return view
}
