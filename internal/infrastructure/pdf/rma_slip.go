// Package pdf genera la constancia imprimible de autorización de devolución (RMA).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tipo de devolución  │  Referencia + Estado          │
//	│  FECHAS: solicitud / aprobación / recepción / cierre         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Cant | P.Unit | Total | Condición | Destino│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total / Cargo de reposición / Reembolso            │
//	│  QR con la referencia + instrucciones de envío               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rma-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// SlipGenerator genera la constancia RMA con Maroto v2.
type SlipGenerator struct {
	companyName string
}

// NewSlipGenerator construye el generador; companyName aparece en el encabezado y como autor.
func NewSlipGenerator(companyName string) *SlipGenerator {
	return &SlipGenerator{companyName: companyName}
}

// GenerateSlip genera el PDF de la solicitud con sus ítems y devuelve sus bytes.
func (g *SlipGenerator) GenerateSlip(_ context.Context, req *entity.RMARequest, items []*entity.RMAItem) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("pdf: solicitud nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Autorización de devolución "+req.ReferenceCode, true).
		WithAuthor(g.companyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(req))
	m.AddRows(datesRow(req))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(reasonRow(req))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableItemRows(items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(req))
	m.AddRows(line.NewRow(3))
	m.AddRows(qrRow(req))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *SlipGenerator) headerRow(req *entity.RMARequest) core.Row {
	title := "AUTORIZACIÓN DE DEVOLUCIÓN"
	if req.Kind == entity.RMAKindVendorReturn {
		title = "RECLAMO A PROVEEDOR"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.companyName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(title, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(req.ReferenceCode, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1}),
			text.New("Estado: "+string(req.Status), props.Text{Size: 8, Align: align.Right, Top: 9, Color: colorGray}),
		),
	)
}

func datesRow(req *entity.RMARequest) core.Row {
	cell := func(label string, t *time.Time) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorPrimary}),
			text.New(formatDate(t), props.Text{Size: 8, Top: 4}),
		)
	}
	requested := req.RequestedAt
	return row.New(10).Add(
		cell("Solicitada", &requested),
		cell("Aprobada", req.ApprovedAt),
		cell("Recibida", req.ReceivedAt),
		cell("Cerrada", req.CompletedAt),
	)
}

func reasonRow(req *entity.RMARequest) core.Row {
	detail := fmt.Sprintf("Motivo: %s   |   Resolución: %s", req.Reason, req.RequestedResolution)
	if req.VendorID != "" {
		detail += "   |   Proveedor: " + req.VendorID
	}
	return row.New(8).Add(col.New(12).Add(text.New(detail, props.Text{Size: 8, Top: 2, Color: colorGray})))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 3, align.Left),
		h("Cant.", 1, align.Center),
		h("P. Unit.", 2, align.Right),
		h("Total", 2, align.Right),
		h("Condición", 2, align.Center),
		h("Destino", 2, align.Center),
	)
}

func tableItemRows(items []*entity.RMAItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		disposition := nonEmpty(string(it.Disposition), "-")
		if it.Restocked {
			disposition += " (repuesto)"
		}
		rows = append(rows, row.New(7).Add(
			col.New(3).Add(text.New(it.ProductID, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(formatMoney(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatMoney(it.TotalPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(nonEmpty(string(it.ConditionReceived), "-"), props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(disposition, props.Text{Size: 7, Align: align.Center, Top: 1})),
		))
	}
	return rows
}

func totalsRow(req *entity.RMARequest) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Total devuelto:"),
			label("Cargo de reposición:"),
			text.New("REEMBOLSO:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 10}),
		),
		col.New(3).Add(
			value(formatMoney(req.TotalAmount)),
			text.New(formatMoney(req.RestockingFee), props.Text{Size: 9, Align: align.Right, Right: 1, Top: 5}),
			text.New(formatMoney(req.RefundAmount), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 10}),
		),
	)
}

func qrRow(req *entity.RMARequest) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(req.ReferenceCode, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Incluya esta constancia dentro del paquete.", props.Text{Size: 9, Top: 4, Left: 3}),
			text.New("La mercancía sin referencia visible puede ser rechazada en bodega.", props.Text{
				Size: 8, Top: 11, Left: 3, Color: colorGray,
			}),
		),
	)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006 15:04")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney formatea con separador de miles "." y decimales ",". Ej: 1234.5 → "$1.234,50".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + "$" + string(buf) + "," + frac
}
