package vnpay

import (
	"log/slog"
	"net/url"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
)

func callbackParams() url.Values {
	params := url.Values{}
	params.Set(ParamAmount, "15000000")
	params.Set(ParamBankCode, "NCB")
	params.Set(ParamCardType, "ATM")
	params.Set(ParamOrderInfo, "Checkout settlement for rental RN0001")
	params.Set(ParamPayDate, "20240510143215")
	params.Set(ParamResponseCode, "00")
	params.Set(ParamTransactionNo, "14226112")
	params.Set(ParamTransactionStatus, "00")
	params.Set(ParamTxnRef, "EVRTEST001")
	return params
}

var _ = Describe("Reconciler", func() {
	var reconciler *Reconciler

	BeforeEach(func() {
		reconciler = NewReconciler(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	})

	Describe("Reconcile", func() {
		It("classifies response code 00 as success", func() {
			result, err := reconciler.Reconcile(callbackParams())

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Outcome).To(Equal(OutcomeSuccess))
			Expect(result.TxnRef).To(Equal("EVRTEST001"))
			Expect(result.TransactionNo).To(Equal("14226112"))
		})

		It("classifies response code 07 as a warning, not a success", func() {
			params := callbackParams()
			params.Set(ParamResponseCode, "07")

			result, err := reconciler.Reconcile(params)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Outcome).To(Equal(OutcomeWarning))
			Expect(result.Message).To(ContainSubstring("suspicious"))
		})

		It("maps documented failure codes to their messages", func() {
			params := callbackParams()
			params.Set(ParamResponseCode, "24")

			result, err := reconciler.Reconcile(params)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Outcome).To(Equal(OutcomeFailure))
			Expect(result.Message).To(Equal("Customer cancelled the transaction"))
		})

		It("treats unknown response codes as failure", func() {
			params := callbackParams()
			params.Set(ParamResponseCode, "98")

			result, err := reconciler.Reconcile(params)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Outcome).To(Equal(OutcomeFailure))
			Expect(result.Message).To(Equal("Transaction failed"))
		})

		It("returns GatewayUnresolved when a required parameter is missing", func() {
			params := callbackParams()
			params.Del(ParamTransactionNo)

			_, err := reconciler.Reconcile(params)

			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errors.ErrorTypeGatewayUnresolved))
			Expect(appErr.StatusCode).To(Equal(202))
		})

		It("divides the gateway amount by 100 for display", func() {
			result, err := reconciler.Reconcile(callbackParams())

			Expect(err).ToNot(HaveOccurred())
			Expect(result.GatewayAmount).To(Equal(int64(15000000)))
			Expect(result.Amount).To(Equal(int64(150000)))
		})

		It("tolerates a missing amount", func() {
			params := callbackParams()
			params.Del(ParamAmount)

			result, err := reconciler.Reconcile(params)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Amount).To(Equal(int64(0)))
		})

		It("formats the pay date positionally for display", func() {
			result, err := reconciler.Reconcile(callbackParams())

			Expect(err).ToNot(HaveOccurred())
			Expect(result.PayDate.Valid).To(BeTrue())
			Expect(result.PayDateDisplay).To(Equal("10/05/2024 14:32:15"))
		})

		It("keeps a malformed pay date as received", func() {
			params := callbackParams()
			params.Set(ParamPayDate, "2024-05-10")

			result, err := reconciler.Reconcile(params)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.PayDate.Valid).To(BeFalse())
			Expect(result.PayDateDisplay).To(Equal("2024-05-10"))
		})
	})
})

var _ = Describe("ParsePayDate", func() {
	It("splits 14 digits into positional groups", func() {
		d := ParsePayDate("20240229235959")
		Expect(d.Valid).To(BeTrue())
		Expect(d.Year).To(Equal(2024))
		Expect(d.Month).To(Equal(2))
		Expect(d.Day).To(Equal(29))
		Expect(d.Hour).To(Equal(23))
		Expect(d.Minute).To(Equal(59))
		Expect(d.Second).To(Equal(59))
	})

	It("rejects wrong lengths without touching Raw", func() {
		d := ParsePayDate("202405")
		Expect(d.Valid).To(BeFalse())
		Expect(d.Raw).To(Equal("202405"))
	})

	It("rejects non-digit groups", func() {
		d := ParsePayDate("2024051014ab15")
		Expect(d.Valid).To(BeFalse())
	})
})
