package models

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/gmautocare/autocare_backend/utils"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is a billed sale: tire line items plus service charges, taxed and
// settled by cash, online transfer, or a split of the two.
//
// All money columns are recomputed server-side from the line inputs; totals
// arriving from clients are ignored. InvoiceNumberSequence carries the
// monotonic counter backing the human-facing InvoiceNumber, and its unique
// index is the authoritative duplicate guard.
type Invoice struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	InvoiceNumber         string          `gorm:"size:100;not null;uniqueIndex" json:"invoice_number"`
	InvoiceNumberSequence int64           `gorm:"not null;uniqueIndex" json:"invoice_number_sequence"`
	CustomerName          string          `gorm:"size:255;not null;index" json:"customer_name"`
	CustomerPhone         string          `gorm:"size:50" json:"customer_phone"`
	CustomerGST           *string         `gorm:"size:20" json:"customer_gst"`
	CarModel              string          `gorm:"size:100" json:"car_model"`
	CarNumber             string          `gorm:"size:50" json:"car_number"`
	UsageReading          *decimal.Decimal `gorm:"type:decimal(20,4)" json:"usage_reading"`
	InvoiceDate           time.Time       `gorm:"not null;index" json:"invoice_date"`

	Items    []*InvoiceItem `gorm:"foreignKey:InvoiceId" json:"items"`
	Services []*ServiceItem `gorm:"foreignKey:InvoiceId" json:"services"`

	ItemsSubtotal    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"items_subtotal"`
	ServicesSubtotal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"services_subtotal"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	CgstAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cgst_amount"`
	SgstAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sgst_amount"`
	GrandTotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"grand_total"`

	PaymentMethod  PaymentMethod  `gorm:"size:20;not null" json:"payment_method"`
	PaymentDetails PaymentDetails `gorm:"embedded" json:"payment_details"`

	IsPending     *bool           `gorm:"default:false" json:"is_pending"`
	PendingAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"pending_amount"`
	PaymentStatus PaymentStatus   `gorm:"-" json:"payment_status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PaymentDetails is the cash/online settlement split, normalized by
// ReconcilePayment before it ever reaches the database.
type PaymentDetails struct {
	CashAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cash_amount"`
	OnlineAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"online_amount"`
	OnlineReference string          `gorm:"size:255" json:"online_reference"`
}

type InvoiceItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	InvoiceId    int             `gorm:"not null;index" json:"invoice_id"`
	MaterialCode string          `gorm:"size:100" json:"material_code"`
	Dimension    string          `gorm:"size:100;not null" json:"dimension"`
	Pattern      string          `gorm:"size:100;not null" json:"pattern"`
	Price        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"price"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
}

type ServiceItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceId   int             `gorm:"not null;index" json:"invoice_id"`
	ServiceType string          `gorm:"size:255;not null" json:"service_type"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Rate        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
}

type NewInvoiceItem struct {
	MaterialCode string          `json:"material_code"`
	Dimension    string          `json:"dimension" binding:"required"`
	Pattern      string          `json:"pattern" binding:"required"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity" binding:"required,min=1"`
}

type NewServiceItem struct {
	ServiceType string          `json:"service_type" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	Rate        decimal.Decimal `json:"rate"`
}

type NewPaymentDetails struct {
	CashAmount      decimal.Decimal `json:"cash_amount"`
	OnlineAmount    decimal.Decimal `json:"online_amount"`
	OnlineReference string          `json:"online_reference"`
}

type NewInvoice struct {
	InvoiceNumber  string             `json:"invoice_number"`
	CustomerName   string             `json:"customer_name" binding:"required"`
	CustomerPhone  string             `json:"customer_phone"`
	CustomerGST    string             `json:"customer_gst" binding:"omitempty,gstin"`
	CarModel       string             `json:"car_model"`
	CarNumber      string             `json:"car_number"`
	UsageReading   *decimal.Decimal   `json:"usage_reading"`
	InvoiceDate    time.Time          `json:"invoice_date" binding:"required"`
	Items          []*NewInvoiceItem  `json:"items" binding:"dive"`
	Services       []*NewServiceItem  `json:"services" binding:"dive"`
	PaymentMethod  PaymentMethod      `json:"payment_method" binding:"required"`
	PaymentDetails NewPaymentDetails  `json:"payment_details"`
	IsPending      *bool              `json:"is_pending"`
	PendingAmount  decimal.Decimal    `json:"pending_amount"`
}

// UpdateInvoice carries a partial update; nil fields are left untouched.
// Items/Services, when present, replace the whole line set.
type UpdateInvoice struct {
	CustomerName   *string             `json:"customer_name"`
	CustomerPhone  *string             `json:"customer_phone"`
	CustomerGST    *string             `json:"customer_gst" binding:"omitempty,gstin"`
	CarModel       *string             `json:"car_model"`
	CarNumber      *string             `json:"car_number"`
	UsageReading   *decimal.Decimal    `json:"usage_reading"`
	InvoiceDate    *time.Time          `json:"invoice_date"`
	Items          *[]*NewInvoiceItem  `json:"items" binding:"omitempty,dive"`
	Services       *[]*NewServiceItem  `json:"services" binding:"omitempty,dive"`
	PaymentMethod  *PaymentMethod      `json:"payment_method"`
	PaymentDetails *NewPaymentDetails  `json:"payment_details"`
	IsPending      *bool               `json:"is_pending"`
	PendingAmount  *decimal.Decimal    `json:"pending_amount"`

	// PropagateCustomer pushes the new phone/GST onto every other invoice
	// of the same customer name (contact details are denormalized per
	// invoice, so a correction has to fan out).
	PropagateCustomer *bool `json:"propagate_customer"`
}

func (inv *Invoice) AfterFind(tx *gorm.DB) error {
	inv.PaymentStatus = inv.derivePaymentStatus()
	return nil
}

func (inv *Invoice) derivePaymentStatus() PaymentStatus {
	if inv.IsPending == nil || !*inv.IsPending || inv.PendingAmount.IsZero() {
		return PaymentStatusPaid
	}
	if inv.PendingAmount.GreaterThanOrEqual(inv.GrandTotal) {
		return PaymentStatusUnpaid
	}
	return PaymentStatusPartiallyPaid
}

// FormatInvoiceNumber renders a sequence as the human-facing number:
// the configured prefix plus the zero-padded sequence ("Gmautocare007").
func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("%s%03d", config.InvoiceNumberPrefix(), seq)
}

// ParseInvoiceSequence recovers the sequence from a formatted number.
func ParseInvoiceSequence(invoiceNumber string) (int64, bool) {
	digits := strings.TrimPrefix(invoiceNumber, config.InvoiceNumberPrefix())
	seq, err := strconv.ParseInt(strings.TrimLeft(digits, "0"), 10, 64)
	if err != nil || seq <= 0 {
		return 0, false
	}
	return seq, true
}

func invoiceSequenceMax(ctx context.Context) (int64, error) {
	db := config.GetDB()
	var maxSeq int64
	err := db.WithContext(ctx).Model(&Invoice{}).
		Select("COALESCE(MAX(invoice_number_sequence), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq, nil
}

func invoiceSequenceTaken(ctx context.Context, seq int64) (bool, error) {
	count, err := utils.ResourceCountWhere[Invoice](ctx, "invoice_number_sequence = ?", seq)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextInvoiceNumber previews the next invoice number without reserving it.
// Two clients previewing concurrently may see the same value; the sequence
// is only consumed at create time.
func NextInvoiceNumber(ctx context.Context) (string, error) {
	maxSeq, err := invoiceSequenceMax(ctx)
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(maxSeq + 1), nil
}

func (input *NewInvoice) validate() error {
	if !input.PaymentMethod.Valid() {
		return validationf("unknown payment method %q", input.PaymentMethod)
	}
	if input.CustomerGST != "" && !utils.IsValidGSTIN(input.CustomerGST) {
		return validationf("invalid GSTIN %q", input.CustomerGST)
	}
	if input.CustomerPhone != "" {
		if err := utils.ValidatePhoneNumber(input.CustomerPhone, utils.CountryCode); err != nil {
			return validationf("invalid phone number %q", input.CustomerPhone)
		}
	}
	if input.UsageReading != nil && input.UsageReading.IsNegative() {
		return validationf("usage reading must not be negative")
	}
	if input.PendingAmount.IsNegative() {
		return validationf("pending amount must not be negative")
	}
	if len(input.Items) == 0 && len(input.Services) == 0 {
		return validationf("invoice needs at least one item or service")
	}
	return nil
}

func buildInvoiceItems(inputs []*NewInvoiceItem) []*InvoiceItem {
	items := make([]*InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, &InvoiceItem{
			MaterialCode: in.MaterialCode,
			Dimension:    in.Dimension,
			Pattern:      in.Pattern,
			Price:        in.Price,
			Quantity:     in.Quantity,
		})
	}
	return items
}

func buildServiceItems(inputs []*NewServiceItem) []*ServiceItem {
	services := make([]*ServiceItem, 0, len(inputs))
	for _, in := range inputs {
		services = append(services, &ServiceItem{
			ServiceType: in.ServiceType,
			Quantity:    in.Quantity,
			Rate:        in.Rate,
		})
	}
	return services
}

func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// CreateInvoice validates the input, recomputes all financials, allocates the
// invoice number, persists the invoice, and decrements stock for each tire
// line. Stock outcomes are reported per line and never fail the invoice:
// a sold-out or unknown tire is the shop's data problem, not a reason to
// refuse billing the customer.
func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, []StockDeltaResult, error) {
	logger := config.GetLogger()

	if err := input.validate(); err != nil {
		return nil, nil, err
	}

	items := buildInvoiceItems(input.Items)
	services := buildServiceItems(input.Services)
	totals := CalculateInvoiceTotals(items, services, config.GetTaxRates())

	details, err := ReconcilePayment(input.PaymentMethod, totals.GrandTotal, PaymentDetails{
		CashAmount:      input.PaymentDetails.CashAmount,
		OnlineAmount:    input.PaymentDetails.OnlineAmount,
		OnlineReference: input.PaymentDetails.OnlineReference,
	})
	if err != nil {
		return nil, nil, err
	}

	var seq int64
	invoiceNumber := strings.TrimSpace(input.InvoiceNumber)
	if invoiceNumber != "" {
		// client carried a previewed number; fast-path the duplicate check
		// before burning a transaction (the unique index still backstops us)
		count, err := utils.ResourceCountWhere[Invoice](ctx, "invoice_number = ?", invoiceNumber)
		if err != nil {
			return nil, nil, err
		}
		if count > 0 {
			return nil, nil, fmt.Errorf("%w: invoice number %s already exists", ErrConflict, invoiceNumber)
		}
		seq, _ = ParseInvoiceSequence(invoiceNumber)
	}
	if seq == 0 {
		seq, err = utils.NextInvoiceSequence(ctx, invoiceSequenceMax, invoiceSequenceTaken)
		if err != nil {
			return nil, nil, err
		}
		if invoiceNumber == "" {
			invoiceNumber = FormatInvoiceNumber(seq)
		}
	}

	var customerGST *string
	if input.CustomerGST != "" {
		customerGST = &input.CustomerGST
	}
	isPending := input.IsPending
	if isPending == nil {
		isPending = utils.NewFalse()
	}
	pendingAmount := decimal.Zero
	if *isPending {
		pendingAmount = input.PendingAmount
	}

	invoice := Invoice{
		InvoiceNumber:         invoiceNumber,
		InvoiceNumberSequence: seq,
		CustomerName:          input.CustomerName,
		CustomerPhone:         input.CustomerPhone,
		CustomerGST:           customerGST,
		CarModel:              input.CarModel,
		CarNumber:             input.CarNumber,
		UsageReading:          input.UsageReading,
		InvoiceDate:           input.InvoiceDate,
		Items:                 items,
		Services:              services,
		ItemsSubtotal:         totals.ItemsSubtotal,
		ServicesSubtotal:      totals.ServicesSubtotal,
		TotalAmount:           totals.TotalAmount,
		CgstAmount:            totals.CgstAmount,
		SgstAmount:            totals.SgstAmount,
		GrandTotal:            totals.GrandTotal,
		PaymentMethod:         input.PaymentMethod,
		PaymentDetails:        details,
		IsPending:             isPending,
		PendingAmount:         pendingAmount,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&invoice).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, nil, fmt.Errorf("%w: invoice number %s already exists", ErrConflict, invoiceNumber)
		}
		config.LogError(logger, "invoice.go", "CreateInvoice", "create invoice", input, err)
		return nil, nil, err
	}

	// sold tires leave the shelf; each line settles on its own, after the
	// invoice is safely persisted
	deltas := make([]StockDelta, 0, len(items))
	for _, item := range items {
		deltas = append(deltas, StockDelta{
			Dimension: item.Dimension,
			Pattern:   item.Pattern,
			Delta:     -item.Quantity,
			BrandHint: item.MaterialCode,
		})
	}
	stockResults := ApplyStockDeltas(ctx, deltas)

	invoice.PaymentStatus = invoice.derivePaymentStatus()
	return &invoice, stockResults, nil
}

func fetchInvoiceByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error) {
	db := config.GetDB()
	var invoice Invoice
	err := db.WithContext(ctx).
		Preload("Items").Preload("Services").
		Where("invoice_number = ?", invoiceNumber).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// GetInvoice fetches one invoice with its lines by invoice number.
func GetInvoice(ctx context.Context, invoiceNumber string) (*Invoice, error) {
	return fetchInvoiceByNumber(ctx, invoiceNumber)
}

// ModifyInvoice applies a partial update. Whenever the line set, the payment
// method, or the payment split is touched, totals and the settlement are
// recomputed from scratch; partial edits can never leave stale financials
// behind. Returns the fresh invoice and how many sibling invoices a customer
// propagation touched.
func ModifyInvoice(ctx context.Context, invoiceNumber string, input *UpdateInvoice) (*Invoice, int64, error) {
	logger := config.GetLogger()

	invoice, err := fetchInvoiceByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, 0, err
	}

	if input.CustomerGST != nil && *input.CustomerGST != "" && !utils.IsValidGSTIN(*input.CustomerGST) {
		return nil, 0, validationf("invalid GSTIN %q", *input.CustomerGST)
	}
	if input.CustomerPhone != nil && *input.CustomerPhone != "" {
		if err := utils.ValidatePhoneNumber(*input.CustomerPhone, utils.CountryCode); err != nil {
			return nil, 0, validationf("invalid phone number %q", *input.CustomerPhone)
		}
	}
	if input.PaymentMethod != nil && !input.PaymentMethod.Valid() {
		return nil, 0, validationf("unknown payment method %q", *input.PaymentMethod)
	}
	if input.UsageReading != nil && input.UsageReading.IsNegative() {
		return nil, 0, validationf("usage reading must not be negative")
	}
	if input.PendingAmount != nil && input.PendingAmount.IsNegative() {
		return nil, 0, validationf("pending amount must not be negative")
	}

	if input.CustomerName != nil {
		invoice.CustomerName = *input.CustomerName
	}
	if input.CustomerPhone != nil {
		invoice.CustomerPhone = *input.CustomerPhone
	}
	if input.CustomerGST != nil {
		invoice.CustomerGST = utils.NilIfEmpty(*input.CustomerGST)
	}
	if input.CarModel != nil {
		invoice.CarModel = *input.CarModel
	}
	if input.CarNumber != nil {
		invoice.CarNumber = *input.CarNumber
	}
	if input.UsageReading != nil {
		invoice.UsageReading = input.UsageReading
	}
	if input.InvoiceDate != nil {
		invoice.InvoiceDate = *input.InvoiceDate
	}
	if input.IsPending != nil {
		invoice.IsPending = input.IsPending
	}
	if input.PendingAmount != nil {
		invoice.PendingAmount = *input.PendingAmount
	}
	if input.PaymentMethod != nil {
		invoice.PaymentMethod = *input.PaymentMethod
	}

	linesChanged := input.Items != nil || input.Services != nil
	if input.Items != nil {
		invoice.Items = buildInvoiceItems(*input.Items)
	}
	if input.Services != nil {
		invoice.Services = buildServiceItems(*input.Services)
	}

	if linesChanged {
		if len(invoice.Items) == 0 && len(invoice.Services) == 0 {
			return nil, 0, validationf("invoice needs at least one item or service")
		}
		totals := CalculateInvoiceTotals(invoice.Items, invoice.Services, config.GetTaxRates())
		invoice.ItemsSubtotal = totals.ItemsSubtotal
		invoice.ServicesSubtotal = totals.ServicesSubtotal
		invoice.TotalAmount = totals.TotalAmount
		invoice.CgstAmount = totals.CgstAmount
		invoice.SgstAmount = totals.SgstAmount
		invoice.GrandTotal = totals.GrandTotal
	}

	if linesChanged || input.PaymentMethod != nil || input.PaymentDetails != nil {
		provided := invoice.PaymentDetails
		if input.PaymentDetails != nil {
			provided = PaymentDetails{
				CashAmount:      input.PaymentDetails.CashAmount,
				OnlineAmount:    input.PaymentDetails.OnlineAmount,
				OnlineReference: input.PaymentDetails.OnlineReference,
			}
		}
		details, err := ReconcilePayment(invoice.PaymentMethod, invoice.GrandTotal, provided)
		if err != nil {
			return nil, 0, err
		}
		invoice.PaymentDetails = details
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, 0, tx.Error
	}

	if linesChanged {
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&InvoiceItem{}).Error; err != nil {
			tx.Rollback()
			return nil, 0, err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&ServiceItem{}).Error; err != nil {
			tx.Rollback()
			return nil, 0, err
		}
		for _, item := range invoice.Items {
			item.InvoiceId = invoice.ID
		}
		for _, service := range invoice.Services {
			service.InvoiceId = invoice.ID
		}
	}

	sess := tx.Session(&gorm.Session{FullSaveAssociations: linesChanged})
	if !linesChanged {
		sess = sess.Omit("Items", "Services")
	}
	if err := sess.Save(invoice).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "invoice.go", "ModifyInvoice", "save invoice", input, err)
		return nil, 0, err
	}

	var propagated int64
	if input.PropagateCustomer != nil && *input.PropagateCustomer {
		updates := map[string]interface{}{}
		if input.CustomerPhone != nil {
			updates["customer_phone"] = *input.CustomerPhone
		}
		if input.CustomerGST != nil {
			updates["customer_gst"] = utils.NilIfEmpty(*input.CustomerGST)
		}
		if len(updates) > 0 {
			res := tx.Model(&Invoice{}).
				Where("customer_name = ? AND id <> ?", invoice.CustomerName, invoice.ID).
				Updates(updates)
			if res.Error != nil {
				tx.Rollback()
				return nil, 0, res.Error
			}
			propagated = res.RowsAffected
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, 0, err
	}

	fresh, err := fetchInvoiceByNumber(ctx, invoice.InvoiceNumber)
	if err != nil {
		return nil, 0, err
	}
	return fresh, propagated, nil
}

// DeleteInvoice removes the invoice and its lines. Stock is not restored:
// deletion is a bookkeeping correction, and any tire that actually came back
// is recorded through a purchase entry.
func DeleteInvoice(ctx context.Context, invoiceNumber string) (*Invoice, error) {
	invoice, err := fetchInvoiceByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&InvoiceItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&ServiceItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Delete(&Invoice{}, invoice.ID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// UpdateInvoicePending flips the pending flag and balance.
func UpdateInvoicePending(ctx context.Context, invoiceNumber string, isPending bool, pendingAmount decimal.Decimal) (*Invoice, error) {
	if pendingAmount.IsNegative() {
		return nil, validationf("pending amount must not be negative")
	}
	invoice, err := fetchInvoiceByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if !isPending {
		pendingAmount = decimal.Zero
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(invoice).Updates(map[string]interface{}{
		"IsPending":     isPending,
		"PendingAmount": pendingAmount,
	}).Error
	if err != nil {
		return nil, err
	}
	invoice.IsPending = &isPending
	invoice.PendingAmount = pendingAmount
	invoice.PaymentStatus = invoice.derivePaymentStatus()
	return invoice, nil
}

// UpdateInvoicePayment swaps the payment method and split, re-reconciled
// against the stored grand total.
func UpdateInvoicePayment(ctx context.Context, invoiceNumber string, method PaymentMethod, provided NewPaymentDetails) (*Invoice, error) {
	if !method.Valid() {
		return nil, validationf("unknown payment method %q", method)
	}
	invoice, err := fetchInvoiceByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	details, err := ReconcilePayment(method, invoice.GrandTotal, PaymentDetails{
		CashAmount:      provided.CashAmount,
		OnlineAmount:    provided.OnlineAmount,
		OnlineReference: provided.OnlineReference,
	})
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	err = db.WithContext(ctx).Model(invoice).Updates(map[string]interface{}{
		"PaymentMethod":   method,
		"CashAmount":      details.CashAmount,
		"OnlineAmount":    details.OnlineAmount,
		"OnlineReference": details.OnlineReference,
	}).Error
	if err != nil {
		return nil, err
	}
	invoice.PaymentMethod = method
	invoice.PaymentDetails = details
	invoice.PaymentStatus = invoice.derivePaymentStatus()
	return invoice, nil
}

// UpdateInvoiceUsageReading records the odometer reading taken at service time.
func UpdateInvoiceUsageReading(ctx context.Context, invoiceNumber string, reading decimal.Decimal) (*Invoice, error) {
	if reading.IsNegative() {
		return nil, validationf("usage reading must not be negative")
	}
	invoice, err := fetchInvoiceByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(invoice).Update("UsageReading", reading).Error; err != nil {
		return nil, err
	}
	invoice.UsageReading = &reading
	invoice.PaymentStatus = invoice.derivePaymentStatus()
	return invoice, nil
}

// GetInvoices lists invoices newest-first with a pagination envelope.
func GetInvoices(ctx context.Context, page int, limit int) ([]*Invoice, Pagination, error) {
	page, limit = NormalizePageLimit(page, limit, 20)

	db := config.GetDB()
	var total int64
	if err := db.WithContext(ctx).Model(&Invoice{}).Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var invoices []*Invoice
	err := db.WithContext(ctx).
		Preload("Items").Preload("Services").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return invoices, NewPagination(page, limit, total), nil
}

// SearchInvoices matches the query against invoice number, customer name,
// phone, and GSTIN.
func SearchInvoices(ctx context.Context, query string, page int, limit int) ([]*Invoice, Pagination, error) {
	page, limit = NormalizePageLimit(page, limit, 20)
	pattern := "%" + strings.TrimSpace(query) + "%"

	db := config.GetDB()
	cond := "invoice_number LIKE ? OR customer_name LIKE ? OR customer_phone LIKE ? OR customer_gst LIKE ?"

	var total int64
	err := db.WithContext(ctx).Model(&Invoice{}).
		Where(cond, pattern, pattern, pattern, pattern).
		Count(&total).Error
	if err != nil {
		return nil, Pagination{}, err
	}

	var invoices []*Invoice
	err = db.WithContext(ctx).
		Preload("Items").Preload("Services").
		Where(cond, pattern, pattern, pattern, pattern).
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return invoices, NewPagination(page, limit, total), nil
}

// InvoiceBreakdown is the per-invoice financial readout: lines with their
// recomputed totals plus the tax split and settlement.
type InvoiceBreakdown struct {
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceDate    time.Time       `json:"invoice_date"`
	CustomerName   string          `json:"customer_name"`
	Items          []*InvoiceItem  `json:"items"`
	Services       []*ServiceItem  `json:"services"`
	Totals         InvoiceTotals   `json:"totals"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	PaymentDetails PaymentDetails  `json:"payment_details"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	PendingAmount  decimal.Decimal `json:"pending_amount"`
}

func GetInvoiceBreakdown(ctx context.Context, invoiceNumber string) (*InvoiceBreakdown, error) {
	invoice, err := fetchInvoiceByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	return &InvoiceBreakdown{
		InvoiceNumber: invoice.InvoiceNumber,
		InvoiceDate:   invoice.InvoiceDate,
		CustomerName:  invoice.CustomerName,
		Items:         invoice.Items,
		Services:      invoice.Services,
		Totals: InvoiceTotals{
			ItemsSubtotal:    invoice.ItemsSubtotal,
			ServicesSubtotal: invoice.ServicesSubtotal,
			TotalAmount:      invoice.TotalAmount,
			CgstAmount:       invoice.CgstAmount,
			SgstAmount:       invoice.SgstAmount,
			GrandTotal:       invoice.GrandTotal,
		},
		PaymentMethod:  invoice.PaymentMethod,
		PaymentDetails: invoice.PaymentDetails,
		PaymentStatus:  invoice.PaymentStatus,
		PendingAmount:  invoice.PendingAmount,
	}, nil
}
