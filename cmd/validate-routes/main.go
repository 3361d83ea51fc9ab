package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/marcelsud/webhook-recorder/routes"
)

/* validate-routes - Standalone CLI tool to validate routes.yaml
 * Usage: go run cmd/validate-routes/main.go [routes.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	// Get routes file path from args or use default
	routesFile := "routes.yaml"
	if len(os.Args) > 1 {
		routesFile = os.Args[1]
	}

	fmt.Printf("Validating routes file: %s\n", routesFile)
	fmt.Println(strings.Repeat("-", 50))

	loader := routes.NewLoader()
	if err := loader.Load(routesFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	connectors := loader.Connectors()
	loadedRoutes := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")

	fmt.Printf("Loaded %d connector(s):\n", len(connectors))
	for _, c := range connectors {
		fmt.Printf("   %s,%s (%s)\n", c.Platform, c.ID, c.Kind)
	}

	fmt.Printf("\nLoaded %d webhook(s):\n", len(loadedRoutes))
	for i, route := range loadedRoutes {
		fmt.Printf("\n%d. %s %s\n", i+1, route.HTTPMethod(), route.Path)
		fmt.Printf("   Save latest:     %t\n", route.SaveLatestMessage)
		fmt.Printf("   Store all:       %t (max %d)\n", route.StoreAllMessages, route.MaxStoredMessages)
		fmt.Printf("   Persist:         %t\n", route.PersistMessages)
		fmt.Printf("   Instant forward: %t\n", route.InstantForward)
		for _, t := range route.Response {
			fmt.Printf("   Response:        %s,%s -> %s\n", t.Platform, t.ConnectorID, strings.Join(t.SessionIDs, ", "))
		}
		if route.CustomCommand != "" {
			fmt.Printf("   Command:         %s %s\n", route.CustomCommand, route.CommandDescription)
		}
	}

	fmt.Printf("\n✓ All webhooks are valid!\n")
	os.Exit(0)
}
