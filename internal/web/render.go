package web

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"babyAgeLabel":      babyAgeLabel,
		"practiceTypeLabel": practiceTypeLabel,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// render executes a page template with the visitor's session attached for
// the shared header navigation.
func render(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Session"] = currentSession(c)
	c.HTML(code, name, data)
}

// Option is a value/label pair for the upload form selects.
type Option struct {
	Value string
	Label string
}

var babyAgeOptions = []Option{
	{"0-1", "0〜1ヶ月"},
	{"2-3", "2〜3ヶ月"},
	{"4-6", "4〜6ヶ月"},
	{"7-9", "7〜9ヶ月"},
	{"10-12", "10〜12ヶ月"},
	{"over-12", "12ヶ月以上"},
}

var practiceTypeOptions = []Option{
	{"basic", "基本マッサージ"},
	{"legs", "脚のマッサージ"},
	{"arms", "腕のマッサージ"},
	{"chest", "胸のマッサージ"},
	{"back", "背中のマッサージ"},
	{"face", "顔のマッサージ"},
	{"full", "全身マッサージ"},
}

func babyAgeLabel(value string) string {
	for _, o := range babyAgeOptions {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}

func practiceTypeLabel(value string) string {
	for _, o := range practiceTypeOptions {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
