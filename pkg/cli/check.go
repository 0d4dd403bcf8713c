package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kisiwu/routeval/pkg/config"
	"github.com/kisiwu/routeval/pkg/routemeta"
	"github.com/kisiwu/routeval/pkg/validation"
)

type checkFlags struct {
	routesPath     string
	schemaProperty string
}

var checkFlagVals checkFlags

// routeReport is one route's outcome in the check output.
type routeReport struct {
	Route  string `json:"route"`
	Status string `json:"status"` // ok, no-schema, error
	Error  string `json:"error,omitempty"`
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile every route schema in a definitions file",
	Long: `Check loads a route definitions file, locates each route's schema the
way the middleware would at request time, and compiles it. Routes
without a locatable schema are reported but do not fail the check;
schemas that do not compile do.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.Load(checkFlagVals.routesPath)
		if err != nil {
			return err
		}

		reports := make([]routeReport, 0, len(f.Routes))
		failed := 0
		for _, rt := range f.Routes {
			report := checkRoute(rt, checkFlagVals.schemaProperty)
			if report.Status == "error" {
				failed++
			}
			reports = append(reports, report)
		}

		if jsonOutput {
			data, _ := json.MarshalIndent(reports, "", "  ")
			fmt.Println(string(data))
		} else {
			for _, rep := range reports {
				if rep.Error != "" {
					fmt.Fprintf(os.Stderr, "%-10s %s: %s\n", rep.Status, rep.Route, rep.Error)
				} else {
					fmt.Printf("%-10s %s\n", rep.Status, rep.Route)
				}
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d route schemas failed to compile", failed, len(f.Routes))
		}
		return nil
	},
}

func checkRoute(rt config.RouteDefinition, schemaProperty string) routeReport {
	name := rt.Name
	if name == "" {
		name = rt.Method + " " + rt.Path
	}
	report := routeReport{Route: name}

	meta := routemeta.Config(rt.Meta)
	schema := validation.Locate(meta, schemaProperty)
	if schema == nil {
		report.Status = "no-schema"
		return report
	}

	opts := validation.Options{}
	if raw := meta.Value(routemeta.KeyValidatorOptions); raw != nil {
		if o, ok := validation.OptionsFrom(raw); ok {
			opts = o
		}
	}

	if _, err := validation.NewEngine(opts).Compile(schema.Document); err != nil {
		report.Status = "error"
		report.Error = err.Error()
		return report
	}
	report.Status = "ok"
	return report
}

func init() {
	checkCmd.Flags().StringVarP(&checkFlagVals.routesPath, "routes", "c", "routes.yaml", "Route definitions file (YAML or JSON)")
	checkCmd.Flags().StringVar(&checkFlagVals.schemaProperty, "schema-property", "", "Property path of the schema inside each route's meta")
	rootCmd.AddCommand(checkCmd)
}
