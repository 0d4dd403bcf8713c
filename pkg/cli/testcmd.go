package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/cobra"

	"github.com/kisiwu/routeval/pkg/config"
	"github.com/kisiwu/routeval/pkg/routemeta"
	"github.com/kisiwu/routeval/pkg/validation"
)

type testFlags struct {
	routesPath     string
	schemaProperty string
	routeName      string
	fixturePath    string
}

var testFlagVals testFlags

var errNoSuchRoute = errors.New("no such route in definitions file")

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Validate a request fixture against one route's schema",
	Long: `Test locates a route's schema and validates a request fixture against
it, offline. The fixture is a JSON object keyed by facet name:

  {"body": {"name": "ada"}, "query": {"page": "1"}}

Facets the schema does not mention are ignored, exactly as the
middleware would ignore them at request time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.Load(testFlagVals.routesPath)
		if err != nil {
			return err
		}

		rt, err := findRoute(f, testFlagVals.routeName)
		if err != nil {
			return err
		}

		fixtureRaw, err := os.ReadFile(testFlagVals.fixturePath)
		if err != nil {
			return fmt.Errorf("failed to read request fixture: %w", err)
		}
		var fixture map[string]any
		if err := json.Unmarshal(fixtureRaw, &fixture); err != nil {
			return fmt.Errorf("failed to parse request fixture: %w", err)
		}

		meta := routemeta.Config(rt.Meta)
		schema := validation.Locate(meta, testFlagVals.schemaProperty)
		if schema == nil {
			fmt.Println("no schema on route, nothing to validate")
			return nil
		}

		opts := validation.Options{}
		if raw := meta.Value(routemeta.KeyValidatorOptions); raw != nil {
			if o, ok := validation.OptionsFrom(raw); ok {
				opts = o
			}
		}

		compiled, err := validation.NewEngine(opts).Compile(schema.Document)
		if err != nil {
			return fmt.Errorf("route schema failed to compile: %w", err)
		}

		vals := validation.Select(schema, fixture)
		if err := compiled.Validate(map[string]any(vals)); err != nil {
			var verr *jsonschema.ValidationError
			if errors.As(err, &verr) {
				printValidationError(verr)
				return errors.New("request fixture is invalid")
			}
			return err
		}

		fmt.Println("valid")
		return nil
	},
}

// findRoute resolves a route by its name, or by "METHOD /path" when no
// definition carries that name.
func findRoute(f *config.File, name string) (*config.RouteDefinition, error) {
	for i := range f.Routes {
		if f.Routes[i].Name == name {
			return &f.Routes[i], nil
		}
	}
	for i := range f.Routes {
		label := strings.ToUpper(f.Routes[i].Method) + " " + f.Routes[i].Path
		if strings.EqualFold(label, name) {
			return &f.Routes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", errNoSuchRoute, name)
}

func printValidationError(verr *jsonschema.ValidationError) {
	payload := validation.PayloadFrom(verr)
	if jsonOutput {
		data, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Println(string(data))
		return
	}
	for _, e := range payload.Errors {
		fmt.Fprintln(os.Stderr, e.Error())
	}
}

func init() {
	testCmd.Flags().StringVarP(&testFlagVals.routesPath, "routes", "c", "routes.yaml", "Route definitions file (YAML or JSON)")
	testCmd.Flags().StringVar(&testFlagVals.schemaProperty, "schema-property", "", "Property path of the schema inside each route's meta")
	testCmd.Flags().StringVarP(&testFlagVals.routeName, "route", "r", "", "Route to test, by name or \"METHOD /path\"")
	testCmd.Flags().StringVar(&testFlagVals.fixturePath, "request", "", "JSON request fixture file")
	_ = testCmd.MarkFlagRequired("route")
	_ = testCmd.MarkFlagRequired("request")
	rootCmd.AddCommand(testCmd)
}
