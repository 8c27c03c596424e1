package render

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/rebuy-de/adrkit/pkg/digutil"
)

const (
	KeyHTML  digutil.Key = "html"
	KeyJSON  digutil.Key = "json"
	KeyPlain digutil.Key = "plain"
	KeyYAML  digutil.Key = "yaml"
	KeyXML   digutil.Key = "xml"
)

// RegisterDefaults registers the built-in handlers with the resolver, unless
// their keys are already in use.
func RegisterDefaults(r *digutil.Resolver) error {
	defaults := map[digutil.Key]func() Handler{
		KeyHTML:  HTML,
		KeyJSON:  JSON,
		KeyPlain: PlainText,
		KeyYAML:  YAML,
		KeyXML:   XML,
	}

	for key, ctor := range defaults {
		err := r.RegisterDefault(key, ctor)
		if err != nil {
			return errors.Wrapf(err, "register %s renderer", key)
		}
	}

	return nil
}

// HandlerFunc adapts a function to the Handler interface. Its content type is
// plain text.
type HandlerFunc func(ctx context.Context, info Info) (string, error)

func (f HandlerFunc) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (f HandlerFunc) Render(ctx context.Context, info Info) (string, error) {
	return f(ctx, info)
}

type plainText struct{}

func PlainText() Handler { return plainText{} }

func (plainText) ContentType() string { return "text/plain; charset=utf-8" }

func (plainText) Render(_ context.Context, info Info) (string, error) {
	b := new(strings.Builder)

	fmt.Fprintf(b, "%d %s\n", info.Status, info.Title)
	if info.Message != "" && info.Message != info.Title {
		fmt.Fprintf(b, "\n%s\n", info.Message)
	}
	for _, key := range sortedKeys(info.Details) {
		fmt.Fprintf(b, "%s: %v\n", key, info.Details[key])
	}
	if info.ID != "" {
		fmt.Fprintf(b, "\nerror id: %s\n", info.ID)
	}
	if len(info.Trace) > 0 {
		b.WriteString("\n")
		for _, line := range info.Trace {
			fmt.Fprintf(b, "    %s\n", line)
		}
	}

	return b.String(), nil
}

type jsonHandler struct{}

func JSON() Handler { return jsonHandler{} }

func (jsonHandler) ContentType() string { return "application/json" }

func (jsonHandler) Render(_ context.Context, info Info) (string, error) {
	raw, err := json.Marshal(info)
	if err != nil {
		return "", errors.Wrap(err, "encode json")
	}
	return string(pretty.Pretty(raw)), nil
}

type yamlHandler struct{}

func YAML() Handler { return yamlHandler{} }

func (yamlHandler) ContentType() string { return "application/yaml" }

func (yamlHandler) Render(_ context.Context, info Info) (string, error) {
	raw, err := yaml.Marshal(info)
	return string(raw), errors.Wrap(err, "encode yaml")
}

type xmlDetail struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

type xmlInfo struct {
	XMLName xml.Name    `xml:"error"`
	ID      string      `xml:"id,attr,omitempty"`
	Status  int         `xml:"status"`
	Title   string      `xml:"title"`
	Message string      `xml:"message"`
	Code    string      `xml:"code,omitempty"`
	Kind    string      `xml:"kind"`
	Details []xmlDetail `xml:"details>detail,omitempty"`
	Trace   []string    `xml:"trace>line,omitempty"`
}

type xmlHandler struct{}

func XML() Handler { return xmlHandler{} }

func (xmlHandler) ContentType() string { return "application/xml" }

func (xmlHandler) Render(_ context.Context, info Info) (string, error) {
	doc := xmlInfo{
		ID:      info.ID,
		Status:  info.Status,
		Title:   info.Title,
		Message: info.Message,
		Code:    info.Code,
		Kind:    info.Kind,
		Trace:   info.Trace,
	}
	for _, key := range sortedKeys(info.Details) {
		doc.Details = append(doc.Details, xmlDetail{
			Key:   key,
			Value: fmt.Sprint(info.Details[key]),
		})
	}

	raw, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode xml")
	}
	return xml.Header + string(raw) + "\n", nil
}

type htmlHandler struct{}

func HTML() Handler { return htmlHandler{} }

func (htmlHandler) ContentType() string { return "text/html; charset=utf-8" }

func (htmlHandler) Render(ctx context.Context, info Info) (string, error) {
	b := new(strings.Builder)
	err := errorPage(info).Render(ctx, b)
	return b.String(), errors.Wrap(err, "render html")
}

func errorPage(info Info) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := templ.EscapeString[string]
		title := fmt.Sprintf("%d %s", info.Status, info.Title)

		p := &printer{w: w}
		p.printf("<!DOCTYPE html>\n<html>\n<head>\n")
		p.printf("<meta charset=\"utf-8\">\n<title>%s</title>\n", e(title))
		p.printf("</head>\n<body>\n<h1>%s</h1>\n", e(title))
		if info.Message != "" && info.Message != info.Title {
			p.printf("<p>%s</p>\n", e(info.Message))
		}
		if len(info.Details) > 0 {
			p.printf("<dl>\n")
			for _, key := range sortedKeys(info.Details) {
				p.printf("<dt>%s</dt><dd>%s</dd>\n", e(key), e(fmt.Sprint(info.Details[key])))
			}
			p.printf("</dl>\n")
		}
		if len(info.Trace) > 0 {
			p.printf("<pre>%s</pre>\n", e(strings.Join(info.Trace, "\n")))
		}
		if info.ID != "" {
			p.printf("<footer>error id: <code>%s</code></footer>\n", e(info.ID))
		}
		p.printf("</body>\n</html>\n")

		return p.err
	})
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
