package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/dgallion1/docingest/internal/chunker"
	"github.com/dgallion1/docingest/internal/export"
	"github.com/dgallion1/docingest/internal/pipeline"
)

var errProblems = errors.New("problems found")

func dumpCmd() *cobra.Command {
	var format string
	var width int
	cmd := &cobra.Command{
		Use:   "dump FILE...",
		Short: "Print the document tree of each file",
		Long: `Parse each file and print its finished document tree.

Formats:
  outline  indented summary with wrapped paragraph text (default)
  json     full tree as JSON
  yaml     full tree as YAML

Example:
  docingest dump manual.xml
  docingest dump --format yaml notes.txt`,
		Args: supportedArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "outline" && format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q", format)
			}
			results, err := newRunner().Run(cmd.Context(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := false
			for _, res := range results {
				if res.Err != nil {
					failed = true
					fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("%s", res.Err))
					continue
				}
				if res.Document == nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: same content as an earlier file, skipped\n", res.Job.Filename)
					continue
				}
				if err := dump(out, res, format, width); err != nil {
					return err
				}
			}
			if failed {
				return errProblems
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "outline", "output format: outline, json or yaml")
	cmd.Flags().IntVarP(&width, "width", "w", export.DefaultWidth, "wrap column for outline text")
	return cmd
}

func dump(w io.Writer, res pipeline.Result, format string, width int) error {
	if format == "outline" {
		return export.Outline(w, res.Document, width)
	}
	data, err := export.Marshal(res.Document, format)
	if err != nil {
		return err
	}
	if format == "json" {
		data = append(data, '\n')
	}
	_, err = w.Write(data)
	return err
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Report diagnostics and fatal errors",
		Long: `Parse each file and list every problem recorded in its tree: unknown
elements, stray text, duplicate ids and unresolved cross references.
Exits non-zero when any file has a problem or fails to parse.`,
		Args: supportedArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := newRunner().Run(cmd.Context(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			problems := 0
			for _, res := range results {
				if res.Err != nil {
					problems++
					fmt.Fprintf(out, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("fatal:"), res.Err)
					continue
				}
				for _, d := range res.Diagnostics {
					problems++
					loc := res.Job.Filename
					if d.Loc != nil {
						loc = d.Loc.String()
					}
					fmt.Fprintf(out, "%s: %s\n", color.YellowString("%s", loc), d.Message)
				}
			}
			if problems > 0 {
				fmt.Fprintf(out, "%d problem(s) in %d file(s)\n", problems, len(results))
				return errProblems
			}
			fmt.Fprintln(out, color.GreenString("ok"))
			return nil
		},
	}
}

func chunksCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "chunks FILE...",
		Short: "Split each document into breadcrumb-labelled chunks",
		Long: `Parse each file and split its tree into chunks of roughly
DOCINGEST_CHUNK_SIZE estimated tokens. Each chunk carries the titles of
its enclosing components and the id of the component it came from.`,
		Args: supportedArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := newRunner().Run(cmd.Context(), args)
			if err != nil {
				return err
			}
			type fileChunks struct {
				File   string               `json:"file" yaml:"file"`
				Job    pipeline.JobSnapshot `json:"job" yaml:"job"`
				Chunks []chunker.Chunk      `json:"chunks" yaml:"chunks"`
			}
			var all []fileChunks
			failed := false
			for _, res := range results {
				if res.Err != nil {
					failed = true
				}
				all = append(all, fileChunks{File: res.Job.Filename, Job: res.Job, Chunks: res.Chunks})
			}

			var data []byte
			switch format {
			case "json":
				data, err = json.MarshalIndent(all, "", "  ")
				data = append(data, '\n')
			case "yaml":
				data, err = yaml.Marshal(all)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}
			if failed {
				return errProblems
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "target chunk size in estimated tokens")
	cmd.Flags().IntVar(&cfg.ChunkOverlap, "chunk-overlap", cfg.ChunkOverlap, "overlap between consecutive chunks in tokens")
	cmd.Flags().IntVar(&cfg.MinChunk, "min-chunk", cfg.MinChunk, "drop chunks smaller than this many tokens")
	return cmd
}
