package postgres

import (
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/payment"
	paymentPkg "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/payment"
)

func TestPaymentRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Payment Repository Suite")
}

// PaymentSQLite is a test-specific version with text instead of jsonb for SQLite compatibility
type PaymentSQLite struct {
	ID                   int64      `gorm:"primaryKey"`
	BookingCode          string     `gorm:"column:booking_code;index;not null"`
	RentalCode           *string    `gorm:"column:rental_code;index"`
	Amount               int64      `gorm:"column:amount;not null"`
	Method               string     `gorm:"column:payment_method;not null"`
	Type                 string     `gorm:"column:payment_type;not null"`
	Status               string     `gorm:"column:status;default:pending"`
	TxnRef               string     `gorm:"column:txn_ref;uniqueIndex;not null"`
	RedirectURL          *string    `gorm:"column:redirect_url"`
	QRPayload            *string    `gorm:"column:qr_payload"`
	BankCode             *string    `gorm:"column:bank_code"`
	GatewayTransactionNo *string    `gorm:"column:gateway_transaction_no"`
	GatewayResponse      string     `gorm:"column:gateway_response;type:text"` // Use text for SQLite
	ExpiresAt            *time.Time `gorm:"column:expires_at"`
	Reason               string     `gorm:"column:reason"`
	Notes                string     `gorm:"column:notes"`
	ProcessedAt          *time.Time `gorm:"column:processed_at"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
}

func (PaymentSQLite) TableName() string {
	return "payments"
}

func (p *PaymentSQLite) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

var _ = ginkgo.Describe("PaymentRepository", func() {
	var (
		db   *gorm.DB
		repo paymentPkg.RepositoryAPI
	)

	newPending := func(bookingCode, txnRef string) *payment.Payment {
		return &payment.Payment{
			BookingCode: bookingCode,
			Amount:      150000,
			Method:      payment.MethodCash,
			Type:        payment.TypeRentalFee,
			Status:      payment.StatusPending,
			TxnRef:      txnRef,
		}
	}

	ginkgo.BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		err = db.AutoMigrate(&PaymentSQLite{})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		repo = NewPaymentRepository(db)
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("inserts a payment and assigns the ID", func() {
			p := newPending("BK0001", "EVRREPO00001")

			err := repo.Create(p)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(p.ID).To(gomega.BeNumerically(">", 0))
		})

		ginkgo.It("rejects a duplicate merchant reference", func() {
			gomega.Expect(repo.Create(newPending("BK0001", "EVRREPO00001"))).To(gomega.Succeed())

			err := repo.Create(newPending("BK0002", "EVRREPO00001"))

			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("GetByID", func() {
		ginkgo.It("returns the stored payment", func() {
			p := newPending("BK0001", "EVRREPO00002")
			gomega.Expect(repo.Create(p)).To(gomega.Succeed())

			found, err := repo.GetByID(p.ID)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(found.TxnRef).To(gomega.Equal("EVRREPO00002"))
			gomega.Expect(found.Method).To(gomega.Equal(payment.MethodCash))
		})

		ginkgo.It("returns the payment sentinel for an unknown ID", func() {
			_, err := repo.GetByID(424242)

			appErr, ok := errors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(errors.ErrCodePaymentNotFound))
		})
	})

	ginkgo.Describe("GetByTxnRef", func() {
		ginkgo.It("finds a payment by merchant reference", func() {
			p := newPending("BK0001", "EVRREPO00003")
			gomega.Expect(repo.Create(p)).To(gomega.Succeed())

			found, err := repo.GetByTxnRef("EVRREPO00003")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(found.ID).To(gomega.Equal(p.ID))
		})

		ginkgo.It("returns the payment sentinel for an unknown reference", func() {
			_, err := repo.GetByTxnRef("EVRNOSUCHREF")

			appErr, ok := errors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(errors.ErrCodePaymentNotFound))
		})
	})

	ginkgo.Describe("GetPendingByBookingCode", func() {
		ginkgo.It("returns only pending payments for the booking, oldest first", func() {
			first := newPending("BK0001", "EVRREPO00004")
			gomega.Expect(repo.Create(first)).To(gomega.Succeed())

			settled := newPending("BK0001", "EVRREPO00005")
			settled.Status = payment.StatusCompleted
			gomega.Expect(repo.Create(settled)).To(gomega.Succeed())

			other := newPending("BK0002", "EVRREPO00006")
			gomega.Expect(repo.Create(other)).To(gomega.Succeed())

			second := newPending("BK0001", "EVRREPO00007")
			gomega.Expect(repo.Create(second)).To(gomega.Succeed())

			pending, err := repo.GetPendingByBookingCode("BK0001")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(pending).To(gomega.HaveLen(2))
			gomega.Expect(pending[0].TxnRef).To(gomega.Equal("EVRREPO00004"))
			gomega.Expect(pending[1].TxnRef).To(gomega.Equal("EVRREPO00007"))
		})

		ginkgo.It("returns an empty slice when everything is settled", func() {
			settled := newPending("BK0001", "EVRREPO00008")
			settled.Status = payment.StatusCancelled
			gomega.Expect(repo.Create(settled)).To(gomega.Succeed())

			pending, err := repo.GetPendingByBookingCode("BK0001")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(pending).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Update", func() {
		ginkgo.It("persists a status change", func() {
			p := newPending("BK0001", "EVRREPO00009")
			gomega.Expect(repo.Create(p)).To(gomega.Succeed())

			now := time.Now().UTC()
			p.Status = payment.StatusCompleted
			p.ProcessedAt = &now

			gomega.Expect(repo.Update(p)).To(gomega.Succeed())

			found, err := repo.GetByID(p.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(found.Status).To(gomega.Equal(payment.StatusCompleted))
			gomega.Expect(found.ProcessedAt).ToNot(gomega.BeNil())
		})
	})
})
