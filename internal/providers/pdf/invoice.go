package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

func (p *MarotoProvider) RenderInvoice(ctx context.Context, doc InvoiceDocument) (io.Reader, error) {
	_ = ctx

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, "SERVICE INVOICE", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New(doc.CompanyName, props.Text{Style: fontstyle.Bold}),
			text.New(doc.CompanyAddress, props.Text{Top: 5, Size: 9}),
			text.New("TIN: "+doc.CompanyTIN, props.Text{Top: 10, Size: 9}),
			text.New(doc.CompanyEmail+"  "+doc.CompanyPhone, props.Text{Top: 15, Size: 9}),
		),
		col.New(6).Add(
			text.New("Invoice number: "+doc.InvoiceNumber, props.Text{Align: align.Right}),
			text.New("Date of issue: "+doc.IssueDate, props.Text{Top: 5, Align: align.Right}),
			text.New("Due date: "+doc.DueDate, props.Text{Top: 10, Align: align.Right}),
			text.New("Billing period: "+doc.BillingPeriod, props.Text{Top: 15, Align: align.Right}),
		),
	)

	m.AddRow(20,
		col.New(12).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(doc.ClientName, props.Text{Top: 5}),
			text.New(doc.ClientAddress, props.Text{Top: 10, Size: 9}),
			text.New("TIN: "+doc.ClientTIN, props.Text{Top: 15, Size: 9}),
		),
	)

	m.AddRow(4, line.NewCol(12))

	m.AddRow(8,
		text.NewCol(8, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(8, doc.Description, props.Text{Size: 9}),
		text.NewCol(4, doc.BaseAmount, props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(4, line.NewCol(12))

	summary := [][2]string{
		{"VAT (12%)", doc.VATAmount},
		{"Total", doc.TotalAmount},
	}
	if doc.Withholding != "" {
		summary = append(summary,
			[2]string{"Less: Withholding tax (5%)", doc.Withholding},
		)
	}
	summary = append(summary, [2]string{"Amount due", doc.NetAmount})

	for _, row := range summary {
		style := props.Text{Size: 9, Align: align.Right}
		if row[0] == "Amount due" {
			style.Style = fontstyle.Bold
			style.Size = 11
		}
		m.AddRow(7,
			text.NewCol(8, row[0], style),
			text.NewCol(4, row[1], style),
		)
	}

	m.AddRow(20,
		text.NewCol(12, doc.BankDetails, props.Text{Size: 9, Top: 6}),
	)

	generated, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(generated.GetBytes()), nil
}
