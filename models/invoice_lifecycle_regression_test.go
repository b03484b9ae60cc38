package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gmautocare/autocare_backend/config"
	"github.com/gmautocare/autocare_backend/models"
	"github.com/gmautocare/autocare_backend/models/reports"
	"github.com/shopspring/decimal"
)

func TestInvoiceLifecycleAndStockLedger(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "autocare_test")
	t.Setenv("INVOICE_NUMBER_PREFIX", "")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	// stock arrives through a purchase
	purchase, tire, err := models.CreateTyrePurchase(ctx, &models.NewTyrePurchase{
		Date:     time.Now(),
		BillNo:   "B-100",
		TyreSize: "195/55R16",
		Pattern:  "P-Zero",
		Brand:    "Pirelli",
		Quantity: 6,
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if tire.Stock != 6 {
		t.Fatalf("stock after purchase expected 6, got %d", tire.Stock)
	}

	// first invoice takes two of them
	invoice, stockResults, err := models.CreateInvoice(ctx, &models.NewInvoice{
		CustomerName: "Ravi",
		InvoiceDate:  time.Now(),
		Items: []*models.NewInvoiceItem{
			{Dimension: "195/55R16", Pattern: "P-Zero", Price: decimal.NewFromInt(4500), Quantity: 2},
		},
		PaymentMethod: models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if invoice.InvoiceNumber != "Gmautocare001" {
		t.Fatalf("first invoice number expected Gmautocare001, got %q", invoice.InvoiceNumber)
	}
	if len(stockResults) != 1 || !stockResults[0].Applied || stockResults[0].Stock != 4 {
		t.Fatalf("unexpected stock results: %+v", stockResults)
	}
	if !invoice.PaymentDetails.CashAmount.Equal(invoice.GrandTotal) {
		t.Fatalf("cash invoice should carry the full grand total: %+v", invoice.PaymentDetails)
	}

	// reusing the number is a conflict
	_, _, err = models.CreateInvoice(ctx, &models.NewInvoice{
		InvoiceNumber: invoice.InvoiceNumber,
		CustomerName:  "Someone Else",
		InvoiceDate:   time.Now(),
		Items: []*models.NewInvoiceItem{
			{Dimension: "195/55R16", Pattern: "P-Zero", Price: decimal.NewFromInt(4500), Quantity: 1},
		},
		PaymentMethod: models.PaymentMethodCash,
	})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("duplicate invoice number should conflict, got %v", err)
	}

	// the sequencer keeps counting past the conflict
	second, _, err := models.CreateInvoice(ctx, &models.NewInvoice{
		CustomerName: "Ravi",
		InvoiceDate:  time.Now(),
		Services: []*models.NewServiceItem{
			{ServiceType: "Wheel Alignment", Quantity: 1, Rate: decimal.NewFromInt(800)},
		},
		PaymentMethod: models.PaymentMethodOnline,
	})
	if err != nil {
		t.Fatalf("create second invoice: %v", err)
	}
	if second.InvoiceNumberSequence <= invoice.InvoiceNumberSequence {
		t.Fatalf("sequence did not advance: %d then %d", invoice.InvoiceNumberSequence, second.InvoiceNumberSequence)
	}

	// overselling clamps at zero and never goes negative
	oversell, _, err := models.CreateInvoice(ctx, &models.NewInvoice{
		CustomerName: "Bulk Buyer",
		InvoiceDate:  time.Now(),
		Items: []*models.NewInvoiceItem{
			{Dimension: "195/55R16", Pattern: "P-Zero", Price: decimal.NewFromInt(4500), Quantity: 50},
		},
		PaymentMethod: models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("oversell invoice should still be billed: %v", err)
	}
	tires, err := models.GetAllTires(ctx)
	if err != nil {
		t.Fatalf("list tires: %v", err)
	}
	if len(tires) != 1 || tires[0].Stock != 0 {
		t.Fatalf("oversold stock should clamp at 0: %+v", tires)
	}

	// decrement against an unknown tire is reported, not fatal
	_, ghostResults, err := models.CreateInvoice(ctx, &models.NewInvoice{
		CustomerName: "Ravi",
		InvoiceDate:  time.Now(),
		Items: []*models.NewInvoiceItem{
			{Dimension: "205/60R15", Pattern: "Nowhere", Price: decimal.NewFromInt(3000), Quantity: 1},
		},
		PaymentMethod: models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("invoice with unknown tire should still be billed: %v", err)
	}
	if len(ghostResults) != 1 || ghostResults[0].Applied {
		t.Fatalf("unknown tire delta should be reported failed: %+v", ghostResults)
	}

	// split payment reconciliation on update
	isPending := false
	_, _, err = models.ModifyInvoice(ctx, second.InvoiceNumber, &models.UpdateInvoice{
		PaymentMethod: paymentMethodPtr(models.PaymentMethodBoth),
		PaymentDetails: &models.NewPaymentDetails{
			CashAmount:   decimal.NewFromInt(300),
			OnlineAmount: decimal.NewFromInt(999),
		},
		IsPending: &isPending,
	})
	if !errors.Is(err, models.ErrInvalidPayment) {
		t.Fatalf("bad split should fail reconciliation, got %v", err)
	}
	updated, _, err := models.ModifyInvoice(ctx, second.InvoiceNumber, &models.UpdateInvoice{
		PaymentMethod: paymentMethodPtr(models.PaymentMethodBoth),
		PaymentDetails: &models.NewPaymentDetails{
			CashAmount:   decimal.NewFromInt(300),
			OnlineAmount: decimal.NewFromInt(500),
		},
	})
	if err != nil {
		t.Fatalf("valid split rejected: %v", err)
	}
	if !updated.PaymentDetails.CashAmount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("split not persisted: %+v", updated.PaymentDetails)
	}

	// regular customer report: Ravi has 3 invoices now
	regulars, err := reports.GetRegularCustomersReport(ctx, 3)
	if err != nil {
		t.Fatalf("regular customers report: %v", err)
	}
	if len(regulars) != 1 || regulars[0].CustomerName != "Ravi" || regulars[0].InvoiceCount != 3 {
		t.Fatalf("unexpected regulars: %+v", regulars)
	}

	// concurrent billing never hands out the same sequence twice
	const concurrentInvoices = 8
	type createOutcome struct {
		seq int64
		err error
	}
	outcomes := make(chan createOutcome, concurrentInvoices)
	for i := 0; i < concurrentInvoices; i++ {
		go func(n int) {
			inv, _, err := models.CreateInvoice(ctx, &models.NewInvoice{
				CustomerName: fmt.Sprintf("Walk-in %d", n),
				InvoiceDate:  time.Now(),
				Services: []*models.NewServiceItem{
					{ServiceType: "Puncture Repair", Quantity: 1, Rate: decimal.NewFromInt(150)},
				},
				PaymentMethod: models.PaymentMethodCash,
			})
			if err != nil {
				outcomes <- createOutcome{err: err}
				return
			}
			outcomes <- createOutcome{seq: inv.InvoiceNumberSequence}
		}(i)
	}
	seenSequences := make(map[int64]bool, concurrentInvoices)
	for i := 0; i < concurrentInvoices; i++ {
		outcome := <-outcomes
		if outcome.err != nil {
			t.Fatalf("concurrent create: %v", outcome.err)
		}
		if seenSequences[outcome.seq] {
			t.Fatalf("sequence %d was issued twice", outcome.seq)
		}
		seenSequences[outcome.seq] = true
	}

	// deleting an invoice does not restore stock
	if _, err := models.DeleteInvoice(ctx, oversell.InvoiceNumber); err != nil {
		t.Fatalf("delete invoice: %v", err)
	}
	tires, _ = models.GetAllTires(ctx)
	if tires[0].Stock != 0 {
		t.Fatalf("invoice deletion must not restore stock, got %d", tires[0].Stock)
	}

	// deleting the purchase clamps rather than going negative
	if _, err := models.DeleteTyrePurchase(ctx, purchase.ID); err != nil {
		t.Fatalf("delete purchase: %v", err)
	}
	tires, _ = models.GetAllTires(ctx)
	if tires[0].Stock != 0 {
		t.Fatalf("purchase deletion should clamp at 0, got %d", tires[0].Stock)
	}

	// the stock report covers tires in stock or ever sold; a zero-stock tire
	// with no sales history stays out
	if _, err := models.CreateTire(ctx, &models.NewTire{
		Dimension: "175/65R14",
		Pattern:   "Never-Moved",
		Stock:     0,
	}); err != nil {
		t.Fatalf("create dormant tire: %v", err)
	}
	levels, err := reports.GetStockLevelsReport(ctx, 0, 0, "", 1, 50)
	if err != nil {
		t.Fatalf("stock levels report: %v", err)
	}
	soldOutListed := false
	for _, row := range levels.Rows {
		if row.Pattern == "Never-Moved" {
			t.Fatalf("dormant tire should not appear in the stock report: %+v", row)
		}
		if row.Dimension == "195/55R16" && row.Pattern == "P-Zero" {
			soldOutListed = true
		}
	}
	if !soldOutListed {
		t.Fatalf("sold-out tire with sales history should stay in the report: %+v", levels.Rows)
	}
}

func paymentMethodPtr(m models.PaymentMethod) *models.PaymentMethod {
	return &m
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("autocare-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("autocare-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=autocare_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
