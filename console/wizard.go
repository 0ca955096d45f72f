package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"merchant-kyc-portal/completion"
	"merchant-kyc-portal/store"
	"merchant-kyc-portal/wizard"
)

var stepTitles = map[completion.Step]string{
	completion.StepCompanyInformation: "Company information",
	completion.StepUBO:                "Ultimate beneficial owners",
	completion.StepPaymentProcessing:  "Payment processing",
	completion.StepSettlementBank:     "Settlement bank details",
	completion.StepRiskManagement:     "Risk management",
	completion.StepKYCDocs:            "KYC documents",
}

// runWizard reads navigation commands from in until quit or EOF. It starts
// on the first incomplete step.
func runWizard(in io.Reader, out io.Writer, flags completion.Flags) error {
	cursor := wizard.NewCursor(wizard.ResumeAt(flags))
	scanner := bufio.NewScanner(in)

	for {
		showStep(out, cursor, flags)
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "next", "n":
			cursor.Next()
		case "back", "b":
			cursor.Back()
		case "jump", "j":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: jump <1-7|step>")
				continue
			}
			if i := completion.Step(fields[1]).Index(); i >= 0 {
				cursor.Jump(i)
				continue
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Fprintf(out, "not a step: %s\n", fields[1])
				continue
			}
			cursor.Jump(n - 1)
		case "quit", "q", "exit":
			return nil
		default:
			fmt.Fprintln(out, "commands: next, back, jump <n|step>, quit")
		}
	}
}

func showStep(out io.Writer, c *wizard.Cursor, flags completion.Flags) {
	step, ok := c.Step()
	if !ok {
		s := completion.Summarize(flags)
		fmt.Fprintf(out, "\nAll steps visited: %d of %d complete (%d%%, %s)\n", s.Completed, s.Total, s.Percent, s.Status)
		if s.Approvable {
			fmt.Fprintln(out, "The merchant is ready for review.")
		}
		return
	}
	state := "not saved"
	if flags[step] {
		state = "saved"
	}
	fmt.Fprintf(out, "\nStep %d of %d: %s [%s]\n", c.Index()+1, completion.TotalSteps, stepTitles[step], state)
}

func writeProfiles(out io.Writer, profiles []store.MerchantProfile) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MERCHANT\tEMAIL\tSTATUS\tPROGRESS")
	for _, p := range profiles {
		s := completion.Summarize(p.Flags())
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\n", p.MerchantID, p.Email, p.OnboardingStatus, s.Percent)
	}
	_ = tw.Flush()
}
