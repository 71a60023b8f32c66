package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: renders the PDF receipt of a sale
// and, when the customer left an email, enqueues the delivery job.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bebidaspos/internal/infra"
	"bebidaspos/internal/model"
	"bebidaspos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	SaleID        string  `json:"sale_id"`
	CustomerEmail *string `json:"customer_email,omitempty"`
}

// EmailQueue is the subset of Dispatcher the receipt worker needs.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// ReceiptRenderer produces the receipt file and returns its path.
type ReceiptRenderer func(sale *model.Sale, names map[uuid.UUID]string, storeName, storagePath string) (string, error)

// ReceiptWorker turns recorded sales into PDF receipts.
type ReceiptWorker struct {
	sales       repository.SaleRepository
	products    repository.ProductRepository
	emails      EmailQueue
	render      ReceiptRenderer
	storeName   string
	storagePath string
}

func NewReceiptWorker(
	sales repository.SaleRepository,
	products repository.ProductRepository,
	emails EmailQueue,
	storeName, storagePath string,
) *ReceiptWorker {
	return &ReceiptWorker{
		sales:       sales,
		products:    products,
		emails:      emails,
		render:      infra.GenerateReceiptPDF,
		storeName:   storeName,
		storagePath: storagePath,
	}
}

// Process handles a single receipt job:
//  1. Parse ReceiptJobPayload
//  2. Load the sale and resolve product names (deleted products get a placeholder)
//  3. Render the PDF
//  4. Enqueue the email job if the customer asked for one
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: invalid receipt payload: %v", ErrPermanent, err)
	}
	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		return fmt.Errorf("%w: invalid sale_id %q", ErrPermanent, payload.SaleID)
	}

	sale, err := w.sales.FindByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: sale %s not found", ErrPermanent, saleID)
		}
		return err
	}

	names := make(map[uuid.UUID]string, len(sale.Items))
	for _, item := range sale.Items {
		if _, seen := names[item.ProductID]; seen {
			continue
		}
		p, err := w.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return err
		}
		names[item.ProductID] = p.Name
	}

	pdfPath, err := w.render(sale, names, w.storeName, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Str("pdf", pdfPath).Str("sale_id", payload.SaleID).Msg("receipt_worker: PDF generated")

	if payload.CustomerEmail == nil || *payload.CustomerEmail == "" || w.emails == nil {
		return nil
	}
	job := EmailJobPayload{
		ToEmail: *payload.CustomerEmail,
		Subject: fmt.Sprintf("%s - Comprovante de compra", w.storeName),
		Body:    fmt.Sprintf("Segue em anexo o comprovante da sua compra.\nTotal: R$ %s", sale.Total.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.emails.EnqueueEmail(ctx, job); err != nil {
		// The PDF already exists; losing the email is not worth re-rendering.
		log.Warn().Err(err).Str("email", job.ToEmail).Msg("receipt_worker: failed to enqueue email")
	}
	return nil
}
