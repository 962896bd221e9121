package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cohortschema/config"
	"cohortschema/convert"
	"cohortschema/core"
	"cohortschema/loader"
	"cohortschema/validate"
)

// validateReport is the machine-readable output of the validate command.
type validateReport struct {
	Valid            bool              `json:"valid"`
	StructuralErrors []core.FieldError `json:"structural_errors,omitempty"`
	Issues           []core.Issue      `json:"issues,omitempty"`
}

func newValidateCmd() *cobra.Command {
	var strict bool
	var precheck bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a cohort definition document",
		Long: `Validate runs structural validation and the business-rule catalog over
a cohort definition document (JSON or YAML, either wire convention) and
reports every finding. With --strict, error-severity findings fail the
command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if strict {
				settings.Strict = true
			}
			if precheck {
				settings.SchemaPrecheck = true
			}

			logger, err := buildLogger(settings.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			doc, err := loader.New(logger).Load(args[0])
			if err != nil {
				return err
			}
			doc = normalizeToCanonical(doc, settings.Format)

			if settings.SchemaPrecheck {
				if err := loader.Precheck(doc); err != nil {
					return err
				}
			}

			cohort, issues, err := validate.WithWarnings(doc)
			if err != nil {
				var structural *core.StructuralValidationError
				if errors.As(err, &structural) {
					renderStructuralFailure(cmd, structural)
					return fmt.Errorf("%d structural violation(s)", len(structural.Errors))
				}
				return err
			}

			renderIssues(cmd, cohort, issues)
			if settings.Strict && core.HasErrors(issues) {
				return fmt.Errorf("strict validation failed: document has error-severity issues")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on error-severity issues")
	cmd.Flags().BoolVar(&precheck, "precheck", false, "run the coarse JSON Schema precheck first")

	return cmd
}

// normalizeToCanonical converts the document to the canonical (Circe)
// convention according to the configured format, auto-detecting by the
// spelling of the top-level keys when asked to.
func normalizeToCanonical(doc map[string]interface{}, format string) map[string]interface{} {
	switch format {
	case config.FormatWebAPI:
		return convert.ToCirce(doc)
	case config.FormatCirce:
		return doc
	default:
		if _, ok := doc["primaryCriteria"]; ok {
			return convert.ToCirce(doc)
		}
		if _, ok := doc["conceptSets"]; ok {
			return convert.ToCirce(doc)
		}
		return doc
	}
}

func renderStructuralFailure(cmd *cobra.Command, structural *core.StructuralValidationError) {
	if flagJSON {
		report := validateReport{Valid: false, StructuralErrors: structural.Errors}
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return
	}
	errorColor.Fprintf(cmd.OutOrStdout(), "✗ structural validation failed (%d violations)\n", len(structural.Errors))
	for i := range structural.Errors {
		fe := &structural.Errors[i]
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", fe.Path, fe.Message)
	}
}

func renderIssues(cmd *cobra.Command, cohort *core.CohortExpression, issues []core.Issue) {
	if flagJSON {
		report := validateReport{Valid: !core.HasErrors(issues), Issues: issues}
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return
	}

	successColor.Fprintf(cmd.OutOrStdout(), "✓ schema valid: %d concept sets, %d inclusion rules\n",
		len(cohort.ConceptSets), len(cohort.InclusionRules))

	for _, issue := range issues {
		c := infoColor
		switch issue.Severity {
		case core.SeverityError:
			c = errorColor
		case core.SeverityWarning:
			c = warningColor
		}
		c.Fprintf(cmd.OutOrStdout(), "  %s", issue.Severity)
		fmt.Fprintf(cmd.OutOrStdout(), " [%s] %s: %s\n", issue.RuleID, issue.FieldPath, issue.Message)
	}
	if len(issues) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "  no business-rule findings")
	}
}
