// routeval CLI - check and test route-attached JSON Schemas.
package main

import "github.com/kisiwu/routeval/pkg/cli"

func main() {
	cli.Execute()
}
