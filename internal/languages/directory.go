package languages

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Directory — двусторонний справочник "название ↔ код".
// Неизвестные значения возвращаются как есть.
type Directory struct {
	ordered []Language
	byCode  map[string]string
	byName  map[string]string
	titles  map[string]string // name → "Name", Caser не потокобезопасен
}

// New строит справочник по таблице пар (code, name).
// При одинаковых названиях побеждает последний код, как и в исходной таблице.
func New(table []Language) *Directory {
	d := &Directory{
		ordered: make([]Language, 0, len(table)),
		byCode:  make(map[string]string, len(table)),
		byName:  make(map[string]string, len(table)),
		titles:  make(map[string]string, len(table)),
	}
	title := cases.Title(language.English)

	for _, l := range table {
		code := strings.ToLower(strings.TrimSpace(l.Code))
		name := strings.ToLower(strings.TrimSpace(l.Name))
		if code == "" || name == "" {
			continue
		}
		if _, seen := d.byCode[code]; !seen {
			d.ordered = append(d.ordered, Language{Code: code, Name: name})
		}
		d.byCode[code] = name
		d.byName[name] = code
		d.titles[name] = title.String(name)
	}

	return d
}

// Default — справочник googletrans.
func Default() *Directory {
	return New(googleLanguages)
}

// CodeForName: "Spanish" → "es". Регистр не важен.
func (d *Directory) CodeForName(name string) string {
	if code, ok := d.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return code
	}
	return name
}

// NameForCode: "es" → "Spanish".
func (d *Directory) NameForCode(code string) string {
	name, ok := d.byCode[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return code
	}
	return d.titles[name]
}

// Resolve принимает либо название, либо код и возвращает код.
func (d *Directory) Resolve(nameOrCode string) string {
	v := strings.ToLower(strings.TrimSpace(nameOrCode))
	if code, ok := d.byName[v]; ok {
		return code
	}
	if _, ok := d.byCode[v]; ok {
		return v
	}
	return nameOrCode
}

func (d *Directory) Known(code string) bool {
	_, ok := d.byCode[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

// Names — отсортированные названия для выпадающих списков.
func (d *Directory) Names() []string {
	out := make([]string, 0, len(d.byName))
	for name := range d.byName {
		out = append(out, d.titles[name])
	}
	sort.Strings(out)
	return out
}

// Languages возвращает список в порядке таблицы, названия с заглавной буквы.
func (d *Directory) Languages() []Language {
	out := make([]Language, len(d.ordered))
	for i, l := range d.ordered {
		out[i] = Language{Code: l.Code, Name: d.titles[d.byCode[l.Code]]}
	}
	return out
}

// BaseCode сводит код к ISO 639-1 там, где это возможно: "zh-cn" → "zh", "iw" → "he".
func BaseCode(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, conf := tag.Base()
	if conf == language.No {
		return strings.ToLower(code)
	}
	return base.String()
}
