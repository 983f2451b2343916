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

package session

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-cpap/pkg/command"
	"jinr.ru/greenlab/go-cpap/pkg/config"
	"jinr.ru/greenlab/go-cpap/pkg/store"
)

const (
	RemoteOptionName = "remote"
)

func NewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Query the session index",
	}
	cmd.AddCommand(NewListCommand(cfg))
	cmd.AddCommand(NewShowCommand(cfg))
	return cmd
}

func withState(cfg *config.Config, f func(*store.State) error) error {
	state, err := store.NewState(cfg.Index.Path)
	if err != nil {
		return err
	}
	defer state.Close()
	return f(state)
}

func printTable(out io.Writer, sessions []*store.Session) {
	for _, s := range sessions {
		fmt.Fprintf(out, "%d\t%d\t%s\t%s\t%s\n", s.MachineID, s.SessionID, s.StartTime, s.EndTime, s.Source)
	}
}

func NewListCommand(cfg *config.Config) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List indexed sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				sessions, err := command.NewApiClient(cfg).ListSessions()
				if err != nil {
					return err
				}
				printTable(cmd.OutOrStdout(), sessions)
				return nil
			}
			return withState(cfg, func(state *store.State) error {
				sessions, err := state.ListSessions()
				if err != nil {
					return err
				}
				printTable(cmd.OutOrStdout(), sessions)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&remote, RemoteOptionName, false, "Query the API server")
	return cmd
}

func NewShowCommand(cfg *config.Config) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "show SESSION_ID",
		Short: "Show indexed sessions with the given session ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("Wrong session ID %s: %w", args[0], err)
			}
			show := func(sessions []*store.Session) {
				for _, s := range sessions {
					fmt.Fprint(cmd.OutOrStdout(), s.String())
				}
			}
			if remote {
				sessions, err := command.NewApiClient(cfg).FindSessions(id)
				if err != nil {
					return err
				}
				show(sessions)
				return nil
			}
			return withState(cfg, func(state *store.State) error {
				sessions, err := state.FindSessions(id)
				if err != nil {
					return err
				}
				show(sessions)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&remote, RemoteOptionName, false, "Query the API server")
	return cmd
}
