// Package i18n traduce los nombres de enums y zonas para las listas de consulta.
package i18n

import (
	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English, // por defecto
	language.Spanish,
	language.Russian,
}

var matcher = language.NewMatcher(supported)

var catalog = map[language.Tag]map[string]string{
	language.Spanish: {
		"GENERATED":    "Generado",
		"STICKED":      "Etiquetado",
		"SCANNED":      "Escaneado",
		"SHIPPED":      "Despachado",
		"ON_WAREHOUSE": "En bodega",
		"SHIPMENT":     "Despacho",
		"RECEIVING":    "Recepción",
		"STORAGE":      "Almacenamiento",
	},
	language.Russian: {
		"GENERATED":    "Сгенерирован",
		"STICKED":      "Наклеен",
		"SCANNED":      "Отсканирован",
		"SHIPPED":      "Отгружен",
		"ON_WAREHOUSE": "На складе",
		"SHIPMENT":     "Отгрузка",
		"RECEIVING":    "Приемка",
		"STORAGE":      "Хранение",
	},
	language.English: {
		"GENERATED":    "Generated",
		"STICKED":      "Sticked",
		"SCANNED":      "Scanned",
		"SHIPPED":      "Shipped",
		"ON_WAREHOUSE": "On warehouse",
		"SHIPMENT":     "Shipment",
		"RECEIVING":    "Receiving",
		"STORAGE":      "Storage",
	},
}

// Localizer traduce claves para un idioma ya negociado.
type Localizer struct {
	tag language.Tag
}

// FromAcceptLanguage negocia el idioma contra el header Accept-Language.
// Un header vacío o inválido cae en inglés.
func FromAcceptLanguage(header string) Localizer {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Localizer{tag: language.English}
	}
	_, idx, _ := matcher.Match(tags...)
	return Localizer{tag: supported[idx]}
}

// Lang código del idioma elegido (en, es, ru).
func (l Localizer) Lang() string {
	base, _ := l.tag.Base()
	return base.String()
}

// Text devuelve la traducción de key; si no existe, la misma key.
func (l Localizer) Text(key string) string {
	if msg, ok := catalog[l.tag][key]; ok {
		return msg
	}
	return key
}
