package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/citrus-stock/pkg/i18n"
)

func TestFromAcceptLanguage(t *testing.T) {
	assert.Equal(t, "es", i18n.FromAcceptLanguage("es-CO,es;q=0.9,en;q=0.5").Lang())
	assert.Equal(t, "ru", i18n.FromAcceptLanguage("ru").Lang())
	assert.Equal(t, "en", i18n.FromAcceptLanguage("").Lang())
	assert.Equal(t, "en", i18n.FromAcceptLanguage("ja").Lang())
}

func TestText(t *testing.T) {
	es := i18n.FromAcceptLanguage("es")
	assert.Equal(t, "Escaneado", es.Text("SCANNED"))
	assert.Equal(t, "Recepción", es.Text("RECEIVING"))
	assert.Equal(t, "COLD_ROOM", es.Text("COLD_ROOM"), "claves desconocidas se devuelven tal cual")

	ru := i18n.FromAcceptLanguage("ru-RU")
	assert.Equal(t, "Отгружен", ru.Text("SHIPPED"))
}
