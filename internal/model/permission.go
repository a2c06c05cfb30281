package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionConversionsImport allows uploading and importing conversion workbooks.
	PermissionConversionsImport Permission = "conversions:import"

	// PermissionConversionsExport allows downloading the re-export workbook.
	PermissionConversionsExport Permission = "conversions:export"

	// PermissionStoreClear allows wiping the exams, courses and conversions collections.
	PermissionStoreClear Permission = "store:clear"
)

// AllPermissions returns every permission code, used when seeding the first admin.
func AllPermissions() []string {
	return []string{
		string(PermissionConversionsImport),
		string(PermissionConversionsExport),
		string(PermissionStoreClear),
	}
}
