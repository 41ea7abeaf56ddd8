package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, AppTitle, "Safe City")
	message.SetString(lang, Yes, "Yes")
	message.SetString(lang, No, "No")
	message.SetString(lang, Cancel, "Cancel")

	message.SetString(lang, LoginFailed, "Login failed")
	message.SetString(lang, InvalidCredentials, "The provided credentials are incorrect.")
	message.SetString(lang, IdentityFailed, "Could not load the user")
	message.SetString(lang, LogoutPrompt, "Do you want to log out?")
	message.SetString(lang, LogoutFailed, "Something went wrong while logging out")
	message.SetString(lang, LoggingOut, "Logging out...")
	message.SetString(lang, NotAuthenticated, "User not authenticated")

	message.SetString(lang, CategoriesListFailed, "Could not load the categories")
	message.SetString(lang, CategoryCreated, "Category created")
	message.SetString(lang, CategoryCreateFailed, "Could not create the category")
	message.SetString(lang, CategoryUpdated, "Category updated")
	message.SetString(lang, CategoryUpdateFailed, "Could not update the category")
	message.SetString(lang, CategoryDeleteTitle, "Delete category")
	message.SetString(lang, CategoryDeletePrompt, "Delete the selected category?")
	message.SetString(lang, CategoryDeleted, "Category deleted")
	message.SetString(lang, CategoryDeleteFailed, "Could not delete the category")
	message.SetString(lang, CategoryDeleting, "Deleting...")

	message.SetString(lang, IncidentsNoUser, "User not found, incidents cannot be loaded yet")
	message.SetString(lang, IncidentsListFailed, "Could not load the incidents")
	message.SetString(lang, IncidentFetchFailed, "Could not load the incident")
	message.SetString(lang, IncidentCreated, "Incident created")
	message.SetString(lang, IncidentCreateFailed, "Could not create the incident")
	message.SetString(lang, IncidentUpdated, "Incident updated")
	message.SetString(lang, IncidentUpdateFailed, "Could not update the incident")
	message.SetString(lang, IncidentDeleteTitle, "Delete incident")
	message.SetString(lang, IncidentDeletePrompt, "Are you sure you want to delete this incident?")
	message.SetString(lang, IncidentDeleteConfirm, "Yes, delete")
	message.SetString(lang, IncidentDeleted, "Incident deleted")
	message.SetString(lang, IncidentDeleteFailed, "Could not delete the incident")
	message.SetString(lang, IncidentDeleting, "Deleting incident...")
	message.SetString(lang, InvalidPayload, "Invalid incident data: %s")

	message.SetString(lang, NoData, "No data")
	message.SetString(lang, Uncategorized, "Uncategorized")
	message.SetString(lang, UnknownReporter, "Unknown")
	message.SetString(lang, NoLocation, "No location")
}
