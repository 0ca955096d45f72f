package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"merchant-kyc-portal/completion"
)

// ErrInvalidForm wraps every form-level validation failure.
var ErrInvalidForm = errors.New("invalid form")

// StepForm is implemented by every onboarding form. Field-level rules live in
// binding tags; Validate checks rules that span fields.
type StepForm interface {
	Validate() error
}

// NewStepForm returns an empty form for step, or nil for an unknown step.
func NewStepForm(step completion.Step) StepForm {
	switch step {
	case completion.StepCompanyInformation:
		return &CompanyInformation{}
	case completion.StepUBO:
		return &UBOInfo{}
	case completion.StepPaymentProcessing:
		return &PaymentInfo{}
	case completion.StepSettlementBank:
		return &SettlementBank{}
	case completion.StepRiskManagement:
		return &RiskManagement{}
	case completion.StepKYCDocs:
		return &KYCDocs{}
	}
	return nil
}

func formError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidForm, fmt.Sprintf(format, args...))
}

// CompanyInformation is the first onboarding step.
type CompanyInformation struct {
	LegalName          string `json:"legalName" bson:"legalName" binding:"required,max=200"`
	TradingName        string `json:"tradingName" bson:"tradingName" binding:"max=200"`
	RegistrationNumber string `json:"registrationNumber" bson:"registrationNumber" binding:"required,max=64"`
	IncorporationDate  string `json:"incorporationDate" bson:"incorporationDate" binding:"omitempty,datetime=2006-01-02"`
	Country            string `json:"country" bson:"country" binding:"required,iso3166_1_alpha2"`
	Address            string `json:"address" bson:"address" binding:"required"`
	Website            string `json:"website" bson:"website" binding:"omitempty,url"`
	Phone              string `json:"phone" bson:"phone" binding:"omitempty,e164"`
	Email              string `json:"email" bson:"email" binding:"omitempty,email"`
}

func (f *CompanyInformation) Validate() error {
	if strings.TrimSpace(f.LegalName) == "" {
		return formError("legal name is blank")
	}
	return nil
}

// BeneficialOwner is one natural person owning part of the merchant.
type BeneficialOwner struct {
	FullName         string `json:"fullName" bson:"fullName" binding:"required"`
	Nationality      string `json:"nationality" bson:"nationality" binding:"required,iso3166_1_alpha2"`
	DateOfBirth      string `json:"dateOfBirth" bson:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	OwnershipPercent string `json:"ownershipPercent" bson:"ownershipPercent" binding:"required,numeric"`
	IDDocumentURL    string `json:"idDocumentUrl" bson:"idDocumentUrl" binding:"omitempty,url"`
	IsPEP            bool   `json:"isPep" bson:"isPep"`
}

// UBOInfo lists the ultimate beneficial owners.
type UBOInfo struct {
	Owners []BeneficialOwner `json:"owners" bson:"owners" binding:"required,min=1,dive"`
}

var hundred = decimal.NewFromInt(100)

func (f *UBOInfo) Validate() error {
	if len(f.Owners) == 0 {
		return formError("at least one beneficial owner is required")
	}
	total := decimal.Zero
	for i, o := range f.Owners {
		pct, err := decimal.NewFromString(o.OwnershipPercent)
		if err != nil {
			return formError("owner %d: ownership percent %q is not a number", i+1, o.OwnershipPercent)
		}
		if !pct.IsPositive() || pct.GreaterThan(hundred) {
			return formError("owner %d: ownership percent must be in (0, 100]", i+1)
		}
		total = total.Add(pct)
	}
	if total.GreaterThan(hundred) {
		return formError("ownership percentages add up to %s%%", total.String())
	}
	return nil
}

// PaymentInfo describes how the merchant takes payments.
type PaymentInfo struct {
	AcceptedMethods       []string `json:"acceptedMethods" bson:"acceptedMethods" binding:"required,min=1,dive,oneof=card sepa ideal wallet bank_transfer"`
	ExpectedMonthlyVolume string   `json:"expectedMonthlyVolume" bson:"expectedMonthlyVolume" binding:"required"`
	AverageTicketSize     string   `json:"averageTicketSize" bson:"averageTicketSize" binding:"required"`
	Currency              string   `json:"currency" bson:"currency" binding:"required,iso4217"`
	RecurringBilling      bool     `json:"recurringBilling" bson:"recurringBilling"`
	ProcessorName         string   `json:"processorName" bson:"processorName"`
}

func (f *PaymentInfo) Validate() error {
	volume, err := positiveAmount("expected monthly volume", f.ExpectedMonthlyVolume)
	if err != nil {
		return err
	}
	ticket, err := positiveAmount("average ticket size", f.AverageTicketSize)
	if err != nil {
		return err
	}
	if ticket.GreaterThan(volume) {
		return formError("average ticket size exceeds expected monthly volume")
	}
	return nil
}

func positiveAmount(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, formError("%s %q is not a number", field, raw)
	}
	if !d.IsPositive() {
		return decimal.Zero, formError("%s must be positive", field)
	}
	return d, nil
}

// SettlementBank is the account payouts are settled to.
type SettlementBank struct {
	AccountHolder string `json:"accountHolder" bson:"accountHolder" binding:"required"`
	BankName      string `json:"bankName" bson:"bankName" binding:"required"`
	IBAN          string `json:"iban" bson:"iban" binding:"required,iban"`
	SwiftCode     string `json:"swiftCode" bson:"swiftCode" binding:"required,bic"`
	Currency      string `json:"currency" bson:"currency" binding:"required,iso4217"`
	BankLetterURL string `json:"bankLetterUrl" bson:"bankLetterUrl" binding:"omitempty,url"`
}

func (f *SettlementBank) Validate() error {
	if !ValidIBAN(f.IBAN) {
		return formError("iban %q failed its checksum", f.IBAN)
	}
	return nil
}

// RiskManagement captures the merchant's risk declarations.
type RiskManagement struct {
	BusinessCategory  string `json:"businessCategory" bson:"businessCategory" binding:"required"`
	MCC               string `json:"mcc" bson:"mcc" binding:"required,numeric,len=4"`
	ChargebackRate    string `json:"chargebackRate" bson:"chargebackRate" binding:"omitempty,numeric"`
	RefundPolicy      string `json:"refundPolicy" bson:"refundPolicy" binding:"required"`
	PEPDeclared       bool   `json:"pepDeclared" bson:"pepDeclared"`
	SanctionsDeclared bool   `json:"sanctionsDeclared" bson:"sanctionsDeclared"`
	AMLPolicyURL      string `json:"amlPolicyUrl" bson:"amlPolicyUrl" binding:"omitempty,url"`
}

func (f *RiskManagement) Validate() error {
	if f.ChargebackRate == "" {
		return nil
	}
	rate, err := decimal.NewFromString(f.ChargebackRate)
	if err != nil || rate.IsNegative() || rate.GreaterThan(hundred) {
		return formError("chargeback rate must be a percentage")
	}
	return nil
}

// Document types accepted in the KYC step.
const (
	DocCertificateOfIncorporation = "certificateOfIncorporation"
	DocGovernmentID               = "governmentId"
	DocProofOfAddress             = "proofOfAddress"
	DocBankStatement              = "bankStatement"
)

// KYCDocument references a file already stored by the upload endpoint.
type KYCDocument struct {
	Type string `json:"type" bson:"type" binding:"required,oneof=certificateOfIncorporation governmentId proofOfAddress bankStatement"`
	URL  string `json:"url" bson:"url" binding:"required,url"`
}

// KYCDocs is the final onboarding step.
type KYCDocs struct {
	Documents    []KYCDocument `json:"documents" bson:"documents" binding:"required,min=1,dive"`
	SignatureURL string        `json:"signatureUrl" bson:"signatureUrl" binding:"required,url"`
}

func (f *KYCDocs) Validate() error {
	seen := make(map[string]bool, len(f.Documents))
	for _, d := range f.Documents {
		if seen[d.Type] {
			return formError("document type %s submitted twice", d.Type)
		}
		seen[d.Type] = true
	}
	if !seen[DocGovernmentID] {
		return formError("a government id document is required")
	}
	return nil
}

// ValidIBAN checks the IBAN mod-97 checksum. Spaces are ignored.
func ValidIBAN(iban string) bool {
	s := strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	if len(s) < 15 || len(s) > 34 {
		return false
	}
	rearranged := s[4:] + s[:4]
	rem := 0
	for _, ch := range rearranged {
		switch {
		case ch >= '0' && ch <= '9':
			rem = (rem*10 + int(ch-'0')) % 97
		case ch >= 'A' && ch <= 'Z':
			rem = (rem*100 + int(ch-'A'+10)) % 97
		default:
			return false
		}
	}
	return rem == 1
}
