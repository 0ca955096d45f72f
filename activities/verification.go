package activities

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"merchant-kyc-portal/shared"
	"merchant-kyc-portal/upload"
)

// ValidateWithSupplier checks that a KYC document reference points at a
// stored file of an accepted type. A bad reference is rejected without retry.
func (a *Activities) ValidateWithSupplier(ctx context.Context, doc shared.DocumentUpload) (shared.VerificationResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Validating document reference",
		"merchantId", doc.MerchantID,
		"documentType", doc.DocumentType,
	)

	if reason := documentProblem(doc.URL); reason != "" {
		logger.Info("Document reference rejected", "merchantId", doc.MerchantID, "reason", reason)
		return shared.VerificationResult{
				Passed:         false,
				VerificationID: fmt.Sprintf("SUP-FAIL-%s-%s", doc.MerchantID, doc.DocumentType),
				Details:        fmt.Sprintf("%s: %s", doc.DocumentType, reason),
			}, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("document %s rejected: %s", doc.DocumentType, reason),
				shared.ErrTypeDocumentRejected,
				nil,
			)
	}

	verificationID := fmt.Sprintf("SUP-%s-%s", doc.MerchantID, doc.DocumentType)
	logger.Info("Document reference accepted", "verificationId", verificationID)
	return shared.VerificationResult{
		Passed:         true,
		VerificationID: verificationID,
		Details:        fmt.Sprintf("%s verified", doc.DocumentType),
	}, nil
}

func documentProblem(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "malformed url"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "url must be http or https"
	}
	if u.Host == "" {
		return "url has no host"
	}
	if !upload.AllowedExtension(u.Path) {
		return "file type not allowed"
	}
	return ""
}

// PerformInternalVerifications screens the merchant's company country
// against the sanctioned list. A failed screening is a business outcome and
// is returned as a result, not an error.
func (a *Activities) PerformInternalVerifications(ctx context.Context, merchantID string) (shared.VerificationResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Performing internal verifications", "merchantId", merchantID)

	p, err := a.Merchants.Get(ctx, merchantID)
	if err != nil {
		return shared.VerificationResult{}, merchantError(merchantID, err)
	}

	if p.CompanyInformation == nil {
		return shared.VerificationResult{
			Passed:         false,
			VerificationID: fmt.Sprintf("INT-FAIL-%s", merchantID),
			Details:        "company information missing",
		}, nil
	}

	country := strings.ToUpper(p.CompanyInformation.Country)
	for _, c := range a.SanctionedCountries {
		if strings.EqualFold(strings.TrimSpace(c), country) {
			logger.Info("Sanctions screening failed", "merchantId", merchantID, "country", country)
			return shared.VerificationResult{
				Passed:         false,
				VerificationID: fmt.Sprintf("INT-FAIL-%s", merchantID),
				Details:        fmt.Sprintf("company country %s is sanctioned", country),
			}, nil
		}
	}

	verificationID := fmt.Sprintf("INT-%s", merchantID)
	logger.Info("Internal verifications passed", "verificationId", verificationID)
	return shared.VerificationResult{
		Passed:         true,
		VerificationID: verificationID,
		Details:        "sanctions screening passed",
	}, nil
}
