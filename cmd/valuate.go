package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aqlanhadi/tally/proration"
	"github.com/aqlanhadi/tally/source"
)

var (
	valuateFile  string
	valuateExact bool
)

var valuateCmd = &cobra.Command{
	Use:   "valuate",
	Short: "Price a return against its original order",
	Long: `Reads a return request carrying the original order and the lines being
returned, prorates discount and tax per line and prints the valuation.

The file holds one JSON object, e.g.
  {"order": {"id": "PO-1", "items": [...]}, "items": [{"item_id": "L1", "return_quantity": 4}]}

Examples:
  tally valuate -f return.json
  tally valuate -f return.json --exact`,
	Run: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stderr)

		f, err := os.Open(valuateFile)
		if err != nil {
			log.Fatalf("error: %v", err)
		}
		defer f.Close()

		obj, err := source.DecodeObject(f)
		if err != nil {
			log.Fatalf("error: %v", err)
		}

		doc, ok := newNormalizer().ReturnDocument(obj)
		if !ok {
			log.Fatalf("error: %s needs both an order and items", valuateFile)
		}

		v, err := proration.ValuateReturn(doc.Order, doc.Items)
		if err != nil {
			log.Fatalf("error: %v", err)
		}
		if !valuateExact {
			v.Totals = v.Totals.Round()
		}
		printJSON(v)
	},
}

func init() {
	rootCmd.AddCommand(valuateCmd)

	valuateCmd.Flags().StringVarP(&valuateFile, "file", "f", "", "Return request file (.json, required)")
	valuateCmd.Flags().BoolVar(&valuateExact, "exact", false, "Keep full precision instead of rounding totals to 2 places")

	valuateCmd.MarkFlagRequired("file")
}
