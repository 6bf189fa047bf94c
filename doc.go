// File: twconfig/doc.go

// Package twconfig loads the build configuration consumed by a utility-class CSS
// framework (Tailwind) and its theming plugin (daisyUI): content-path globs, theme
// extensions and per-plugin options.
//
// Features:
//   - JSON, YAML, TOML and the `module.exports = {...}` JS literal
//   - Shape and JSON Schema validation with field-level ConfigurationError
//   - Layered overrides with configurable precedence (CLI, env, file, defaults)
//   - Atomic encoding back to any supported format
//   - Content glob resolution for diagnostics
//   - Hot reload through Holder
//
// Quick Start:
//
//	cfg, err := twconfig.LoadFile("tailwind.config.js")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(cfg.Content)                  // [./view/**/*.templ ./**/*.templ]
//	fmt.Println(cfg.DefaultTheme("daisyui"))  // lemonade
//
// Layered loading:
//
//	cfg, err := twconfig.NewBuilder().
//	    WithFile("tailwind.config.json").
//	    WithEnvPrefix("TWCONFIG_").
//	    WithDotEnv(".env").
//	    WithArgs([]string{"--pluginOptions.daisyui.themes=dark,light"}).
//	    Build()
//
// Default Precedence (highest to lowest):
//  1. Command-line arguments (--content=./web/**/*.templ)
//  2. Environment variables (TWCONFIG_CONTENT=./web/**/*.templ), then dotenv
//     files added with WithDotEnv
//  3. Configuration file
//  4. Default values
//
// A loaded BuildConfig is never modified by this package. Accessors that expose
// slices or maps hand out copies, so a value can be shared between goroutines.
package twconfig
