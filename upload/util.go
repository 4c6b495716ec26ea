package upload

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fatih/color"
)

// printRequest prints upload request details with colorized formatting.
func printRequest(req *http.Request) {
	cyanBold := color.New(color.FgHiCyan, color.Bold)
	_, _ = cyanBold.Println("╔═════════════════ Upload Request ═════════════════╗")

	green := color.New(color.FgGreen)
	_, _ = green.Print("  Method: ")

	fmt.Println(req.Method)

	_, _ = green.Print("  URL: ")

	fmt.Println(req.URL.String())

	_, _ = green.Print("  Headers: ")

	printIndentedHeaders(req.Header)

	_, _ = cyanBold.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()
}

// printResponse prints upload response details with colorized formatting.
func printResponse(resp *http.Response, body []byte) {
	cyanBold := color.New(color.FgHiCyan, color.Bold)
	_, _ = cyanBold.Println("╔════════════════ Upload Response ═════════════════╗")

	green := color.New(color.FgGreen)
	_, _ = green.Print("  Status: ")

	fmt.Println(resp.Status)

	_, _ = green.Print("  Headers: ")

	printIndentedHeaders(resp.Header)

	if len(body) > 0 {
		_, _ = color.New(color.FgHiMagenta, color.Bold).Println("  Body:")
		fmt.Println("  " + jsonIndent(body))
	}

	_, _ = cyanBold.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()
}

// printIndentedHeaders prints HTTP headers with consistent indentation.
func printIndentedHeaders(headers http.Header) {
	if len(headers) == 0 {
		fmt.Println("<empty>")

		return
	}

	fmt.Println()

	for key, values := range headers {
		fmt.Printf("    %-20s : %s\n", key, strings.Join(values, ", "))
	}
}
