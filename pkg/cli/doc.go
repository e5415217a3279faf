// Package cli provides the building blocks of the retrogen command line:
// configuration contexts, output formatting, request files, the directory
// layout under ~/.retromusic, and terminal rendering of scores.
//
// Configuration lives in ~/.retromusic/<app>/config.yaml and holds named
// contexts in the manner of kubectl. Each context carries generation and
// rendering defaults plus the locations of the library and artifact store:
//
//	cfg, err := cli.LoadConfig("retrogen", "")
//	ctx, err := cfg.ResolveContext("")
//	scale := ctx.ScaleOrDefault()
package cli
