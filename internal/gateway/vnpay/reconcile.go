package vnpay

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
)

// Return parameter names as the gateway sends them.
const (
	ParamAmount            = "vnp_Amount"
	ParamBankCode          = "vnp_BankCode"
	ParamCardType          = "vnp_CardType"
	ParamOrderInfo         = "vnp_OrderInfo"
	ParamPayDate           = "vnp_PayDate"
	ParamResponseCode      = "vnp_ResponseCode"
	ParamTransactionNo     = "vnp_TransactionNo"
	ParamTransactionStatus = "vnp_TransactionStatus"
	ParamTxnRef            = "vnp_TxnRef"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeWarning Outcome = "warning"
	OutcomeFailure Outcome = "failure"
)

const (
	codeSuccess        = "00"
	codeSuspectedFraud = "07"
)

// failureMessages covers the gateway's documented non-success codes.
// Codes outside this table still classify as failure with a generic message.
var failureMessages = map[string]string{
	"09": "Card or account not registered for online banking",
	"10": "Card or account verification failed more than 3 times",
	"11": "Payment window expired, please retry the transaction",
	"12": "Card or account is locked",
	"13": "Incorrect one-time password",
	"24": "Customer cancelled the transaction",
	"51": "Insufficient account balance",
	"65": "Daily transaction limit exceeded",
	"75": "Issuing bank is under maintenance",
	"79": "Payment password entered incorrectly too many times",
}

// PayDate carries the gateway timestamp parsed positionally from its
// 14-digit form. A malformed value keeps Raw as received and Valid false;
// display formatting must never block the rest of the receipt.
type PayDate struct {
	Raw    string `json:"raw"`
	Valid  bool   `json:"valid"`
	Year   int    `json:"year,omitempty"`
	Month  int    `json:"month,omitempty"`
	Day    int    `json:"day,omitempty"`
	Hour   int    `json:"hour,omitempty"`
	Minute int    `json:"minute,omitempty"`
	Second int    `json:"second,omitempty"`
}

func (d PayDate) String() string {
	if !d.Valid {
		return d.Raw
	}
	return fmt.Sprintf("%02d/%02d/%04d %02d:%02d:%02d", d.Day, d.Month, d.Year, d.Hour, d.Minute, d.Second)
}

// ParsePayDate splits a 14-digit timestamp into 4-2-2-2-2-2 digit groups.
func ParsePayDate(raw string) PayDate {
	d := PayDate{Raw: raw}
	if len(raw) != 14 {
		return d
	}

	groups := []struct {
		start, end int
		dst        *int
	}{
		{0, 4, &d.Year},
		{4, 6, &d.Month},
		{6, 8, &d.Day},
		{8, 10, &d.Hour},
		{10, 12, &d.Minute},
		{12, 14, &d.Second},
	}
	for _, g := range groups {
		n, err := strconv.Atoi(raw[g.start:g.end])
		if err != nil {
			return PayDate{Raw: raw}
		}
		*g.dst = n
	}
	d.Valid = true
	return d
}

type ReconciliationResult struct {
	Outcome           Outcome `json:"outcome"`
	Message           string  `json:"message"`
	ResponseCode      string  `json:"response_code"`
	TxnRef            string  `json:"txn_ref"`
	TransactionNo     string  `json:"transaction_no"`
	TransactionStatus string  `json:"transaction_status"`
	BankCode          string  `json:"bank_code"`
	CardType          string  `json:"card_type"`
	OrderInfo         string  `json:"order_info"`
	PayDate           PayDate `json:"pay_date"`
	PayDateDisplay    string  `json:"pay_date_display"`
	GatewayAmount     int64   `json:"gateway_amount"`
	Amount            int64   `json:"amount"`
}

// Reconciler classifies the gateway's asynchronous return parameters into
// a definitive outcome. Pure parsing, no network and no persistence.
type Reconciler struct {
	logger *slog.Logger
}

func NewReconciler(logger *slog.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Reconcile validates the callback parameter set and maps the response
// code to a ternary outcome. An incomplete set returns GatewayUnresolved:
// the customer may still be mid-flow and the callback can be re-presented.
func (r *Reconciler) Reconcile(params url.Values) (*ReconciliationResult, error) {
	required := []string{
		ParamBankCode,
		ParamCardType,
		ParamOrderInfo,
		ParamPayDate,
		ParamResponseCode,
		ParamTransactionNo,
		ParamTransactionStatus,
		ParamTxnRef,
	}
	for _, name := range required {
		if params.Get(name) == "" {
			r.logger.Warn("gateway callback incomplete", "missing_param", name)
			return nil, errors.NewGatewayUnresolvedError(fmt.Sprintf("gateway callback is missing %s", name))
		}
	}

	responseCode := params.Get(ParamResponseCode)
	outcome, message := classify(responseCode)

	// Amount arrives in gateway minor units; divide by 100 for display.
	gatewayAmount, err := strconv.ParseInt(params.Get(ParamAmount), 10, 64)
	if err != nil {
		gatewayAmount = 0
	}

	result := &ReconciliationResult{
		Outcome:           outcome,
		Message:           message,
		ResponseCode:      responseCode,
		TxnRef:            params.Get(ParamTxnRef),
		TransactionNo:     params.Get(ParamTransactionNo),
		TransactionStatus: params.Get(ParamTransactionStatus),
		BankCode:          params.Get(ParamBankCode),
		CardType:          params.Get(ParamCardType),
		OrderInfo:         params.Get(ParamOrderInfo),
		PayDate:           ParsePayDate(params.Get(ParamPayDate)),
		GatewayAmount:     gatewayAmount,
		Amount:            gatewayAmount / 100,
	}
	result.PayDateDisplay = result.PayDate.String()

	r.logger.Info("gateway callback classified",
		"txn_ref", result.TxnRef,
		"response_code", responseCode,
		"outcome", outcome,
		"amount", result.Amount)

	return result, nil
}

func classify(responseCode string) (Outcome, string) {
	switch responseCode {
	case codeSuccess:
		return OutcomeSuccess, "Transaction completed successfully"
	case codeSuspectedFraud:
		// Charged, but flagged as suspicious; needs manual review before
		// the payment is considered settled.
		return OutcomeWarning, "Amount deducted; transaction flagged as suspicious and held for review"
	}
	if msg, ok := failureMessages[responseCode]; ok {
		return OutcomeFailure, msg
	}
	return OutcomeFailure, "Transaction failed"
}
