package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/enum"
	domainRepo "github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/internal/infrastructure/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return first[entity.Invoice](scoped(ctx, r.db).Preload("Client"), "id = ?", id)
}

func (r *invoiceRepository) GetByReceivable(ctx context.Context, receivableID uuid.UUID) (*entity.Invoice, error) {
	return first[entity.Invoice](scoped(ctx, r.db).Order("created_at DESC"), "receivable_id = ?", receivableID)
}

func (r *invoiceRepository) MarkSigned(ctx context.Context, invoice *entity.Invoice) error {
	res := database.Conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("id = ? AND status = ?", invoice.ID, enum.InvoiceStatusPending).
		Updates(map[string]interface{}{
			"status":       enum.InvoiceStatusSigned,
			"signature_id": invoice.SignatureID,
			"fiscal_uuid":  invoice.FiscalUUID,
			"cfdi_sign":    invoice.CfdiSign,
			"signed_at":    invoice.SignedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *invoiceRepository) UpdateArtifacts(ctx context.Context, invoice *entity.Invoice) error {
	return database.Conn(ctx, r.db).Model(&entity.Invoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{
			"xml_key": invoice.XMLKey,
			"qr_key":  invoice.QRKey,
			"pdf_key": invoice.PDFKey,
		}).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return scoped(ctx, r.db).
		Where("status = ?", enum.InvoiceStatusPending).
		Delete(&entity.Invoice{}, "id = ?", id).Error
}

func (r *invoiceRepository) List(ctx context.Context, filter domainRepo.InvoiceFilter) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := scoped(ctx, r.db).Model(&entity.Invoice{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ReceivableID != nil {
		query = query.Where("receivable_id = ?", *filter.ReceivableID)
	}

	query, err := paginate(query, filter.Pagination, &total)
	if err != nil {
		return nil, 0, err
	}
	err = query.Preload("Client").Order("created_at DESC").Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := scoped(ctx, r.db).Model(&entity.Invoice{}).
		Where("status = ?", enum.InvoiceStatusSigned).
		Count(&count).Error
	return count, err
}

// NextSequence returns the next folio number for prefix. Failed invoices are
// deleted, so their folios are reused.
func (r *invoiceRepository) NextSequence(ctx context.Context, prefix string) (int, error) {
	return nextNumber(scoped(ctx, r.db).Model(&entity.Invoice{}), "folio", prefix)
}
