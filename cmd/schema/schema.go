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

package schema

import (
	"fmt"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-cpap/pkg/command"
	"jinr.ru/greenlab/go-cpap/pkg/config"
	"jinr.ru/greenlab/go-cpap/pkg/schema"
)

const (
	FileOptionName   = "file"
	RemoteOptionName = "remote"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect schema sets",
	}
	cmd.AddCommand(NewListCommand(cfg))
	cmd.AddCommand(NewShowCommand())
	return cmd
}

func NewListCommand(cfg *config.Config) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List schema sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if remote {
				sets, err := command.NewApiClient(cfg).ListSchemas()
				if err != nil {
					return err
				}
				for _, set := range sets {
					fmt.Fprintf(out, "%s\tv%d\t%d bytes\n", set.Name, set.Version, set.Header.Width())
				}
				return nil
			}
			for _, name := range schema.Names() {
				set, err := schema.Lookup(name)
				if err != nil {
					return err
				}
				marker := ""
				if name == cfg.Extract.SchemaSet {
					marker = "\t(default)"
				}
				fmt.Fprintf(out, "%s\tv%d\t%d bytes%s\n", set.Name, set.Version, set.Header.Width(), marker)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, RemoteOptionName, false, "List the schema sets of the API server")
	return cmd
}

func NewShowCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "show [NAME]",
		Short: "Print a schema set as YAML",
		Long:  "Print a schema set as YAML. The output can be edited and passed back with --schema-file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			set, err := schema.Resolve(name, file)
			if err != nil {
				return err
			}
			data, err := schema.Marshal(set)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&file, FileOptionName, "", "Validate and print a YAML schema set file")
	return cmd
}
