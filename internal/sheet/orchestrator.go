package sheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/bezem-backend/internal/model"
)

// headerRows is the number of leading rows that are never persisted,
// whatever the skip set of the layout says.
const headerRows = 2

// Options selects between display-only and import runs.
type Options struct {
	// Persist builds and stores records for every data row.
	Persist bool
	// FullDisplay renders every column; otherwise only always-visible
	// columns are rendered. Import runs always render every column.
	FullDisplay bool
	ImportID    uuid.UUID
}

// Orchestrator drives one sheet through normalization, extraction, record
// building and persistence.
type Orchestrator struct {
	registry  *Registry
	extractor *Extractor
	builder   *RecordBuilder
	assembler *ConversionAssembler
	gateway   Gateway
	target    RenderTarget
	log       zerolog.Logger
}

// NewOrchestrator wires the pipeline. gateway may be nil for display-only
// runs and target may be nil when nothing is rendered.
func NewOrchestrator(registry *Registry, extractor *Extractor, gateway Gateway, target RenderTarget, log zerolog.Logger) *Orchestrator {
	if target == nil {
		target = discardTarget{}
	}
	return &Orchestrator{
		registry:  registry,
		extractor: extractor,
		builder:   NewRecordBuilder(registry),
		assembler: NewConversionAssembler(),
		gateway:   gateway,
		target:    target,
		log:       log.With().Str("component", "sheet_orchestrator").Logger(),
	}
}

// ProcessSheet renders every non-skipped row and, when persisting, stores
// one conversion per data row. Incomplete rows are counted and skipped;
// a store failure aborts the sheet.
func (o *Orchestrator) ProcessSheet(ctx context.Context, sheetID model.SheetID, rows []Row, opts Options) (*model.SheetReport, error) {
	schema, err := o.registry.SchemaFor(sheetID)
	if err != nil {
		return nil, err
	}
	if opts.Persist && o.gateway == nil {
		return nil, errors.New("persist requested without a store")
	}

	report := &model.SheetReport{Sheet: string(sheetID), Status: model.SheetStatusImported}
	displayMode := opts.Persist || opts.FullDisplay
	filled := make([]Row, len(rows))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if schema.Skips(i) {
			filled[i] = row
			continue
		}

		filled[i] = Normalize(row, i, filled, schema)
		ext := o.extractor.Extract(filled[i], schema, displayMode)
		o.target.Render(RenderedRow{
			Sheet:       sheetID,
			RowIndex:    i,
			Cells:       ext.Cells,
			DisplayList: ext.DisplayList,
		})
		report.Rendered++

		if !opts.Persist || i < headerRows {
			continue
		}

		conv, err := o.buildConversion(ext.Slots, sheetID)
		if err != nil {
			if errors.Is(err, ErrIncompleteRow) || errors.Is(err, ErrInvalidDerivedValue) {
				report.SkippedRows++
				report.Issues = append(report.Issues, model.RowIssue{Row: RowNumber(i), Reason: err.Error()})
				o.log.Debug().Err(err).Str("sheet", string(sheetID)).Int("row", RowNumber(i)).Msg("Row skipped")
				continue
			}
			return report, err
		}
		conv.ImportID = opts.ImportID

		var batch Batch
		batch.AddConversion(conv)
		if err := o.gateway.Append(ctx, &batch); err != nil {
			return report, fmt.Errorf("append row %d: %w", RowNumber(i), err)
		}
		report.Persisted++
	}

	o.log.Debug().
		Str("sheet", string(sheetID)).
		Int("rendered", report.Rendered).
		Int("persisted", report.Persisted).
		Int("skipped", report.SkippedRows).
		Msg("Sheet processed")

	return report, nil
}

func (o *Orchestrator) buildConversion(slots Slots, sheetID model.SheetID) (*model.Conversion, error) {
	pair, err := o.builder.BuildCoursePair(slots, sheetID)
	if err != nil {
		return nil, err
	}
	tag, _ := slots.Get(FieldBezemOrConv)
	comment, _ := slots.Get(FieldOpmerking)
	return o.assembler.Assemble(tag, pair.Old, pair.New, comment, sheetID)
}

// RowNumber converts a row index into the spreadsheet row number. The title
// row that supplies the raw keys is spreadsheet row 1.
func RowNumber(rowIndex int) int {
	return rowIndex + 2
}
