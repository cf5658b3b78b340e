package dom

import (
	"strings"
)

// Field is one successful control of a form.
type Field struct {
	Name  string
	Value string
}

const controlSelector = "input, textarea, select"

// Value returns the current value of a form control.
func (e *Element) Value() string {
	if s, ok := e.doc.state[e.node]; ok && s.value != nil {
		return *s.value
	}
	return e.defaultValue()
}

func (e *Element) SetValue(value string) {
	e.doc.nodeState(e.node).value = &value
}

func (e *Element) defaultValue() string {
	switch e.Tag() {
	case "textarea":
		return e.Text()
	case "select":
		option := e.Query("option[selected]")
		if option == nil {
			option = e.Query("option")
		}
		if option == nil {
			return ""
		}
		if option.HasAttr("value") {
			return option.Attr("value")
		}
		return strings.TrimSpace(option.Text())
	case "input":
		if e.HasAttr("value") {
			return e.Attr("value")
		}
		if t := e.inputType(); t == "checkbox" || t == "radio" {
			return "on"
		}
	}
	return ""
}

func (e *Element) inputType() string {
	return strings.ToLower(e.Attr("type"))
}

// Reset restores every control of the form to its default value.
func (e *Element) Reset() {
	for _, control := range e.QueryAll(controlSelector) {
		if s, ok := e.doc.state[control.node]; ok {
			s.value = nil
		}
	}
}

// Fields returns the form data set of e in document order.
func (e *Element) Fields() []Field {
	fields := []Field{}
	for _, control := range e.QueryAll(controlSelector) {
		name := control.Attr("name")
		if name == "" || control.HasAttr("disabled") {
			continue
		}
		if control.Tag() == "input" {
			switch control.inputType() {
			case "submit", "button", "reset", "image", "file":
				continue
			case "checkbox", "radio":
				if !control.HasAttr("checked") {
					continue
				}
			}
		}
		fields = append(fields, Field{Name: name, Value: control.Value()})
	}
	return fields
}
