package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

// arrowDefs is the connector arrowhead marker referenced by path.link.
const arrowDefs = `<defs><marker id="arrow" markerWidth="10" markerHeight="10" refX="10" refY="5" orient="auto"><path d="M0,0 L0,10 L10,5 Z" fill="#888"/></marker></defs>`

// DefaultCurveOffset is the horizontal control-point offset, in pixels, of
// the cubic connector curves.
const DefaultCurveOffset = 50

// DefaultTitle is the document title used when none is configured.
const DefaultTitle = "Flow Lineage"

// Option configures the HTML renderer.
type Option func(*htmlRenderer)

type htmlRenderer struct {
	title       string
	curveOffset int
}

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(r *htmlRenderer) { r.title = title }
}

// WithCurveOffset sets the control-point offset of the connector curves.
// Larger values produce wider curves; zero draws straight-ish lines.
func WithCurveOffset(px int) Option {
	return func(r *htmlRenderer) { r.curveOffset = px }
}

// RenderHTML produces the self-contained interactive document: one column
// per level, one card per node, one row per field, with the payload and
// all behavior embedded. The artifact needs no external resources to
// render or interact with.
//
// Field rows are addressable via data-node and data-field attributes so
// connectors and click handlers can target them individually. Connector
// geometry is computed in the viewer and recomputed on scroll and resize,
// coalesced to one redraw per animation frame.
func RenderHTML(p Payload, opts ...Option) ([]byte, error) {
	r := htmlRenderer{title: DefaultTitle, curveOffset: DefaultCurveOffset}
	for _, opt := range opts {
		opt(&r)
	}

	data, err := marshalPayload(p)
	if err != nil {
		return nil, err
	}
	script := strings.ReplaceAll(docJS, "__CURVE_OFFSET__", strconv.Itoa(r.curveOffset))

	page := html.Doctype(
		html.HTML(
			html.Lang("en"),
			html.Head(
				html.Meta(html.Charset("utf-8")),
				html.TitleEl(gomponents.Text(r.title)),
				html.StyleEl(gomponents.Raw(docCSS)),
			),
			html.Body(
				html.Div(html.ID("container")),
				html.SVG(gomponents.Raw(arrowDefs)),
				html.Script(
					html.ID("flow-data"),
					html.Type("application/json"),
					gomponents.Raw(string(data)),
				),
				html.Script(gomponents.Raw(script)),
			),
		),
	)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}

// marshalPayload encodes the payload for embedding in a script tag. The
// encoder's HTML escaping stays on so a formula containing "</script>"
// cannot terminate the data block.
func marshalPayload(p Payload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
