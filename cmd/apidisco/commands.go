package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yonah/apidisco/internal/domain"
	"github.com/yonah/apidisco/internal/usecase"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "apidisco",
		Short:         "Sync discovery documents and call the APIs they describe",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newDescribeCmd(a), newCallCmd(a), newServicesCmd(a))
	return root
}

func newDescribeCmd(a *app) *cobra.Command {
	var (
		version string
		headers []string
	)
	cmd := &cobra.Command{
		Use:   "describe <source>",
		Short: "Fetch a discovery document and print the service it describes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.syncSource(cmd.Context(), args[0], version, headers)
			if err != nil {
				return err
			}
			printService(cmd.OutOrStdout(), svc)
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "discovery-version", "1.0", `discovery document dialect ("0.3" or "1.0")`)
	cmd.Flags().StringArrayVar(&headers, "header", nil, "extra fetch header, key=value (repeatable)")
	return cmd
}

func newCallCmd(a *app) *cobra.Command {
	var (
		version     string
		headers     []string
		params      []string
		key         string
		alt         string
		body        string
		bearerToken string
	)
	cmd := &cobra.Command{
		Use:   "call <source> <method-id>",
		Short: "Invoke a method of a discovered service, e.g. events.list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.syncSource(cmd.Context(), args[0], version, headers); err != nil {
				return err
			}

			values, err := parsePairs(params)
			if err != nil {
				return err
			}
			if key == "" {
				key = a.cfg.DeveloperKey
			}
			var auth usecase.Authenticator
			if bearerToken != "" {
				auth = &staticTokenAuth{token: bearerToken}
			}

			stream, err := a.callUC.Execute(cmd.Context(), usecase.CallInput{
				Source:        args[0],
				MethodID:      args[1],
				Values:        values,
				DeveloperKey:  key,
				Body:          body,
				Alt:           domain.Representation(alt),
				Authenticator: auth,
			})
			if err != nil {
				return err
			}
			defer stream.Close()
			_, err = io.Copy(cmd.OutOrStdout(), stream)
			return err
		},
	}
	cmd.Flags().StringVar(&version, "discovery-version", "1.0", `discovery document dialect ("0.3" or "1.0")`)
	cmd.Flags().StringArrayVar(&headers, "header", nil, "extra fetch header, key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "method parameter, key=value (repeatable)")
	cmd.Flags().StringVar(&key, "key", "", "developer key (defaults to APIDISCO_DEVELOPER_KEY)")
	cmd.Flags().StringVar(&alt, "alt", "json", `response representation ("json" or "atom")`)
	cmd.Flags().StringVar(&body, "body", "", "request body for POST/PUT/PATCH methods")
	cmd.Flags().StringVar(&bearerToken, "bearer-token", "", "static bearer token for the Authorization header")
	return cmd
}

func newServicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "Sync every configured source and list the resulting services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := make([]usecase.SourceConfig, 0, len(a.cfg.Services))
			for _, src := range a.cfg.Services {
				cfg, err := sourceConfig(src.URL, src.Version, nil)
				if err != nil {
					return err
				}
				cfg.Headers = src.Headers
				sources = append(sources, cfg)
			}
			if err := a.syncUC.SyncAll(cmd.Context(), sources, a.builderParams()); err != nil {
				fmt.Fprintf(os.Stderr, "some sources failed to sync: %v\n", err)
			}

			list, err := a.repo.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, svc := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%d methods\t%s\n",
					svc.Name, svc.Version, len(svc.MethodIDs()), svc.BaseURI)
			}
			return nil
		},
	}
}

func (a *app) builderParams() usecase.BuilderParams {
	return usecase.BuilderParams{GZipEnabled: a.cfg.GZipEnabled}
}

func (a *app) syncSource(ctx context.Context, source, version string, headerPairs []string) (*domain.Service, error) {
	headers, err := parsePairs(headerPairs)
	if err != nil {
		return nil, err
	}
	cfg, err := sourceConfig(source, version, headers)
	if err != nil {
		return nil, err
	}
	return a.syncUC.Execute(ctx, cfg, a.builderParams())
}

func sourceConfig(source, version string, headers map[string]string) (usecase.SourceConfig, error) {
	if version == "" {
		version = "1.0"
	}
	v, err := domain.ParseDiscoveryVersion(version)
	if err != nil {
		return usecase.SourceConfig{}, err
	}
	return usecase.SourceConfig{URL: source, Version: v, Headers: headers}, nil
}

// parsePairs turns repeated key=value flags into a map. nil when no
// pairs were given, so absence stays distinguishable downstream.
func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("malformed key=value pair: %q", pair)
		}
		m[k] = v
	}
	return m, nil
}

func printService(w io.Writer, svc *domain.Service) {
	fmt.Fprintf(w, "%s %s\n", svc.Name, svc.Version)
	if svc.Description != "" {
		fmt.Fprintf(w, "  %s\n", svc.Description)
	}
	fmt.Fprintf(w, "  base: %s\n\n", svc.BaseURI)

	for _, id := range svc.MethodIDs() {
		m, _ := svc.MethodByID(id)
		fmt.Fprintf(w, "%s\t%s %s\n", id, m.HTTPMethod, m.RestPath)
		names := make([]string, 0, len(m.Parameters))
		for name := range m.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			p := m.Parameters[name]
			var notes []string
			if p.Required {
				notes = append(notes, "required")
			}
			if p.HasDefault {
				notes = append(notes, "default="+p.Default)
			}
			if p.Pattern != "" {
				notes = append(notes, "pattern="+p.Pattern)
			}
			suffix := ""
			if len(notes) > 0 {
				suffix = " (" + strings.Join(notes, ", ") + ")"
			}
			fmt.Fprintf(w, "  %s=<%s> in %s%s\n", name, p.Type, p.Location, suffix)
		}
	}

	if len(svc.Schemas) > 0 {
		names := make([]string, 0, len(svc.Schemas))
		for name := range svc.Schemas {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "\nschemas: %s\n", strings.Join(names, ", "))
	}
}

// staticTokenAuth decorates requests with a fixed bearer token.
type staticTokenAuth struct {
	token string
}

func (a *staticTokenAuth) ApplyToRequest(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.token)
}

var _ usecase.Authenticator = (*staticTokenAuth)(nil)
