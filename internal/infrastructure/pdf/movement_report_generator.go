// Package pdf implementa la exportación del historial de movimientos a PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + filtros aplicados + fecha de generación    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Producto | Sucursal | Ant. | Nuevo    │
//	│         | Referencia | Usuario                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: total de movimientos listados                       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/StockLedger-api/internal/domain/entity"
	"github.com/jhoicas/StockLedger-api/internal/domain/repository"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MovementReportGenerator genera el PDF del historial usando Maroto v2.
type MovementReportGenerator struct{}

// NewMovementReportGenerator construye el generador.
func NewMovementReportGenerator() *MovementReportGenerator { return &MovementReportGenerator{} }

// Generate genera el PDF del historial filtrado y devuelve sus bytes.
func (g *MovementReportGenerator) Generate(filter repository.MovementFilter, movements []*entity.StockMovement) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Historial de movimientos de stock", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(filter))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, mov := range movements {
		m.AddRows(movementRow(mov))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(row.New(6).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Total de movimientos: %d", len(movements)), props.Text{
			Size: 8, Align: align.Right, Top: 1, Color: colorGray,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título (izq), filtros y fecha de generación (der).
func headerRow(filter repository.MovementFilter) core.Row {
	return row.New(14).Add(
		col.New(7).Add(
			text.New("HISTORIAL DE MOVIMIENTOS DE STOCK", props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New(filterSummary(filter), props.Text{
				Size: 8, Top: 8, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Generado: "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			}),
		),
	)
}

func filterSummary(filter repository.MovementFilter) string {
	product := filter.ProductID
	if product == "" {
		product = "todos"
	}
	branch := filter.BranchID
	if branch == "" {
		branch = "todas"
	}
	return fmt.Sprintf("Producto: %s   |   Sucursal: %s", product, branch)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7.5, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Producto", 2, align.Left),
		h("Sucursal", 2, align.Left),
		h("Ant.", 1, align.Right),
		h("Nuevo", 1, align.Right),
		h("Referencia", 2, align.Left),
	)
}

// movementRow: una fila por entrada del historial.
func movementRow(mov *entity.StockMovement) core.Row {
	cell := func(value string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(value, props.Text{
			Size: 7, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	ref := ""
	if mov.Reference != nil {
		ref = fmt.Sprintf("%s %s", mov.Reference.Kind, shortID(mov.Reference.ID))
	}
	return row.New(6).Add(
		cell(mov.CreatedAt.Format("02/01/2006 15:04"), 2, align.Left),
		cell(string(mov.Type), 2, align.Left),
		cell(shortID(mov.ProductID), 2, align.Left),
		cell(shortID(mov.BranchID), 2, align.Left),
		cell(fmt.Sprintf("%d", mov.OldQuantity), 1, align.Right),
		cell(fmt.Sprintf("%d", mov.NewQuantity), 1, align.Right),
		cell(ref, 2, align.Left),
	)
}

// shortID recorta UUIDs largos para que quepan en la celda.
func shortID(s string) string {
	if len(s) > 13 {
		return s[:13] + "…"
	}
	return s
}
