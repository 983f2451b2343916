/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package extract

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	pkgcmd "jinr.ru/greenlab/go-cpap/pkg/cmd"
	"jinr.ru/greenlab/go-cpap/pkg/command"
	"jinr.ru/greenlab/go-cpap/pkg/config"
	"jinr.ru/greenlab/go-cpap/pkg/log"
	"jinr.ru/greenlab/go-cpap/pkg/sink"
	"jinr.ru/greenlab/go-cpap/pkg/store"
)

const (
	DestinationOptionName = "destination"
	NamingOptionName      = "naming"
	FormatOptionName      = "format"
	SchemaOptionName      = "schema"
	SchemaFileOptionName  = "schema-file"
	DelimiterOptionName   = "delimiter"
	DecodeBodyOptionName  = "decode-body"
	OverwriteOptionName   = "overwrite"
	ExtensionOptionName   = "extension"
	JobsOptionName        = "jobs"
	RemoteOptionName      = "remote"
	NoIndexOptionName     = "no-index"
)

const (
	extractExample = `
Extract a session summary next to the current directory
# go-cpap extract SESSION.001

Extract every .001 file of a card dump as yaml, four at a time
# go-cpap extract --format yaml --jobs 4 --destination out /media/card

Let a running server do the work
# go-cpap extract --remote SESSION.001
`
)

type options struct {
	destination, naming, format string
	schemaSet, schemaFile       string
	delimiter                   string
	decodeBody, overwrite       bool
	extensions                  []string
	jobs                        int
	remote, noIndex             bool
}

// apply copies the flags the user set over the configured values.
func (o *options) apply(cmd *cobra.Command, cfg config.ExtractConfig) config.ExtractConfig {
	flags := cmd.Flags()
	if o.destination != "" {
		cfg.Destination = o.destination
	}
	if o.naming != "" {
		cfg.Naming = o.naming
	}
	if o.format != "" {
		cfg.Format = o.format
	}
	if o.schemaSet != "" {
		cfg.SchemaSet = o.schemaSet
	}
	if o.schemaFile != "" {
		cfg.SchemaFile = o.schemaFile
	}
	if o.delimiter != "" {
		cfg.Delimiter = o.delimiter
	}
	if flags.Changed(DecodeBodyOptionName) {
		cfg.DecodeBody = o.decodeBody
	}
	if flags.Changed(OverwriteOptionName) {
		cfg.Overwrite = o.overwrite
	}
	if flags.Changed(ExtensionOptionName) {
		cfg.Extensions = o.extensions
	}
	if flags.Changed(JobsOptionName) {
		cfg.Jobs = o.jobs
	}
	return cfg
}

func NewCommand(cfg *config.Config) *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:     "extract SOURCE...",
		Short:   "Extract session summary files",
		Long:    "Extract session summary files. Directories are searched for files with the configured extensions.",
		Example: extractExample,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extractConfig := o.apply(cmd, *cfg.Extract)
			check := &config.Config{Extract: &extractConfig}
			if err := check.Validate(); err != nil {
				return err
			}
			sources, err := pkgcmd.CollectSources(args, extractConfig.Extensions)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				log.Warning("No sources found")
				return nil
			}
			if o.remote {
				return extractRemote(cmd.OutOrStdout(), command.NewApiClient(cfg), &extractConfig, sources, !o.noIndex)
			}
			return extractLocal(cmd.OutOrStdout(), cfg, &extractConfig, sources, !o.noIndex)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&o.destination, DestinationOptionName, "", "Directory to write output files to")
	flags.StringVar(&o.naming, NamingOptionName, "", fmt.Sprintf("Output file naming: %s or %s", config.NamingTimestamp, config.NamingSource))
	flags.StringVar(&o.format, FormatOptionName, "", fmt.Sprintf("Output format: %s, %s or %s", config.FormatText, config.FormatYAML, config.FormatJSON))
	flags.StringVar(&o.schemaSet, SchemaOptionName, "", fmt.Sprintf("Schema set name. E.g. %s", config.DefaultSchemaSet))
	flags.StringVar(&o.schemaFile, SchemaFileOptionName, "", "YAML schema set file, takes precedence over --schema")
	flags.StringVar(&o.delimiter, DelimiterOptionName, "", fmt.Sprintf("Packet delimiter in hex. E.g. %s", config.DefaultDelimiter))
	flags.BoolVar(&o.decodeBody, DecodeBodyOptionName, false, "Decode packets after the header with the body schema")
	flags.BoolVar(&o.overwrite, OverwriteOptionName, false, "Truncate existing output files instead of appending")
	flags.StringSliceVar(&o.extensions, ExtensionOptionName, nil, fmt.Sprintf("Extensions of files taken from directories. E.g. %s", config.DefaultExtension))
	flags.IntVar(&o.jobs, JobsOptionName, 1, "Number of sources extracted in parallel")
	flags.BoolVar(&o.remote, RemoteOptionName, false, "Send sources to the API server instead of extracting locally")
	flags.BoolVar(&o.noIndex, NoIndexOptionName, false, "Do not record extractions in the session index")
	return cmd
}

func extractLocal(out io.Writer, cfg *config.Config, extractConfig *config.ExtractConfig, sources []string, index bool) error {
	pipeline, err := pkgcmd.NewPipeline(extractConfig)
	if err != nil {
		return err
	}
	runner := &pkgcmd.Runner{
		Pipeline: pipeline,
		Sink:     sink.OptionsFromConfig(extractConfig),
		Jobs:     extractConfig.Jobs,
	}
	if index && cfg.Index.Enabled {
		state, err := store.NewState(cfg.Index.Path)
		if err != nil {
			log.Warning("Session index %s not available: %s", cfg.Index.Path, err)
		} else {
			defer state.Close()
			runner.State = state
		}
	}

	failed := 0
	for _, result := range runner.Run(sources) {
		if result.Err != nil {
			log.Error("%s", result.Err)
			failed++
			continue
		}
		fmt.Fprintf(out, "%s -> %s", result.Source, result.Output)
		if n := result.Extraction.Warnings(); n > 0 {
			fmt.Fprintf(out, " (%d warnings)", n)
		}
		fmt.Fprintln(out)
	}
	if failed > 0 {
		return pkgcmd.ErrSourcesFailed{Failed: failed, Total: len(sources)}
	}
	return nil
}

func extractRemote(out io.Writer, client command.Client, extractConfig *config.ExtractConfig, sources []string, index bool) error {
	if extractConfig.SchemaFile != "" {
		log.Warning("Schema file %s is ignored for remote extraction", extractConfig.SchemaFile)
	}
	failed := 0
	for _, source := range sources {
		doc, err := client.Extract(source, extractConfig.SchemaSet, extractConfig.DecodeBody, index)
		if err != nil {
			log.Error("%s: %s", source, err)
			failed++
			continue
		}
		data, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "---\n%s", data)
	}
	if failed > 0 {
		return pkgcmd.ErrSourcesFailed{Failed: failed, Total: len(sources)}
	}
	return nil
}
