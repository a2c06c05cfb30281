package model

// SheetID is the label of one of the nine worksheet layouts.
type SheetID string

const (
	SheetPropedeuse     SheetID = "Propedeuse"
	SheetHoofdfase      SheetID = "Hoofdfase"
	SheetDeeltijd       SheetID = "Deeltijd"
	SheetMinoren        SheetID = "Minoren"
	SheetKeuzeonderwijs SheetID = "Keuzeonderwijs"
	SheetAfstuderen     SheetID = "Afstuderen"
	SheetAssociate      SheetID = "Associate degree"
	SheetToetsen        SheetID = "Toetsen"
	SheetHerkansingen   SheetID = "Herkansingen"
)

// AllSheets lists the sheet tags in workbook order.
var AllSheets = []SheetID{
	SheetPropedeuse,
	SheetHoofdfase,
	SheetDeeltijd,
	SheetMinoren,
	SheetKeuzeonderwijs,
	SheetAfstuderen,
	SheetAssociate,
	SheetToetsen,
	SheetHerkansingen,
}
