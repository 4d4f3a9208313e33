package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: litedocs <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Build the documentation site")
	fmt.Fprintln(w, "  serve      Serve the site and rebuild on change")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'litedocs help <command>' for details on a specific command.")
}

// printSiteFlags prints the flags shared by build and serve.
func printSiteFlags(w io.Writer) {
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default litedocs.yml)")
	fmt.Fprintln(w, "  -d, --docs-dir <path>     Docs directory")
	fmt.Fprintln(w, "  -o, --site-dir <path>     Output directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "JupyterLite:")
	fmt.Fprintln(w, "      --index-url <url>     Package index URL")
	fmt.Fprintln(w, "      --on-failure <s>      Package failure policy: fatal, skip")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel downloads (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug output")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  LITEDOCS_CONFIG, LITEDOCS_DOCS_DIR, LITEDOCS_SITE_DIR, LITEDOCS_TIMEOUT,")
	fmt.Fprintln(w, "  LITEDOCS_INDEX_URL, LITEDOCS_ON_FAILURE, LITEDOCS_WORKERS, LITEDOCS_ADDR")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: litedocs build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render the docs directory into the site directory, assembling the")
	fmt.Fprintln(w, "JupyterLite runtime when plugins.jupyterlite is configured.")
	fmt.Fprintln(w)
	printSiteFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build:")
	fmt.Fprintln(w, "      --clean               Remove the site directory first")
	fmt.Fprintln(w, "  -t, --timeout <d>         Build timeout (e.g., 2m)")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: litedocs serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build the site, serve it over HTTP and rebuild when docs, notebooks")
	fmt.Fprintln(w, "or the config change. Resolved packages are reused between rebuilds.")
	fmt.Fprintln(w)
	printSiteFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default "+defaultAddr+")")
	fmt.Fprintln(w, "      --delay <d>           Rebuild debounce delay (default 150ms)")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: litedocs version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: litedocs help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
