package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Spanish

	message.SetString(lang, AppTitle, "Safe City")
	message.SetString(lang, Yes, "Sí")
	message.SetString(lang, No, "No")
	message.SetString(lang, Cancel, "Cancelar")

	message.SetString(lang, LoginFailed, "Error al iniciar sesión")
	message.SetString(lang, InvalidCredentials, "Las credenciales proporcionadas son incorrectas.")
	message.SetString(lang, IdentityFailed, "Error al obtener el usuario")
	message.SetString(lang, LogoutPrompt, "¿Desea cerrar sesión?")
	message.SetString(lang, LogoutFailed, "Ocurrió un error al cerrar sesión")
	message.SetString(lang, LoggingOut, "Cerrando sesión...")
	message.SetString(lang, NotAuthenticated, "Usuario no autenticado")

	message.SetString(lang, CategoriesListFailed, "Error al obtener las categorías")
	message.SetString(lang, CategoryCreated, "Categoría creada")
	message.SetString(lang, CategoryCreateFailed, "Error al crear la categoría")
	message.SetString(lang, CategoryUpdated, "Categoría actualizada")
	message.SetString(lang, CategoryUpdateFailed, "Error al actualizar la categoría")
	message.SetString(lang, CategoryDeleteTitle, "Eliminar Categoría")
	message.SetString(lang, CategoryDeletePrompt, "¿Desea eliminar la categoría seleccionada?")
	message.SetString(lang, CategoryDeleted, "Categoría eliminada correctamente")
	message.SetString(lang, CategoryDeleteFailed, "Error al eliminar la categoría")
	message.SetString(lang, CategoryDeleting, "Eliminando...")

	message.SetString(lang, IncidentsNoUser, "No se encontró el usuario, no se puede obtener incidentes aún")
	message.SetString(lang, IncidentsListFailed, "Error al obtener los incidentes")
	message.SetString(lang, IncidentFetchFailed, "Error al obtener el incidente")
	message.SetString(lang, IncidentCreated, "Incidente creado exitosamente")
	message.SetString(lang, IncidentCreateFailed, "Error al crear el incidente")
	message.SetString(lang, IncidentUpdated, "Incidente actualizado correctamente")
	message.SetString(lang, IncidentUpdateFailed, "Error al actualizar incidente")
	message.SetString(lang, IncidentDeleteTitle, "Eliminar incidente")
	message.SetString(lang, IncidentDeletePrompt, "¿Estás seguro de eliminar este incidente?")
	message.SetString(lang, IncidentDeleteConfirm, "Sí, eliminar")
	message.SetString(lang, IncidentDeleted, "Incidente eliminado correctamente")
	message.SetString(lang, IncidentDeleteFailed, "Error al eliminar el incidente")
	message.SetString(lang, IncidentDeleting, "Eliminando incidente...")
	message.SetString(lang, InvalidPayload, "Datos del incidente inválidos: %s")

	message.SetString(lang, NoData, "Sin datos")
	message.SetString(lang, Uncategorized, "Sin categoría")
	message.SetString(lang, UnknownReporter, "Desconocido")
	message.SetString(lang, NoLocation, "Sin ubicación")
}
