package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/query"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/catalog"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/rest"
	"github.com/vladislavdragonenkov/costumeshop/internal/version"
)

func rootCommand(env *environment) *cobra.Command {
	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Manage the costume shop catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(env.in)
	root.SetOut(env.out)
	root.SetErr(env.err)

	flags := root.PersistentFlags()
	flags.StringVar(&env.dataDir, "data-dir", env.dataDir, "directory with shops.csv, costumes.csv and offers.csv")
	flags.BoolVarP(&env.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		collectionCommand(env, domain.ShopSchema, func(c *catalog.Catalog) collection[*domain.Shop] { return c.Shops }),
		collectionCommand(env, domain.CostumeSchema, func(c *catalog.Catalog) collection[*domain.Costume] { return c.Costumes }),
		collectionCommand(env, domain.OfferSchema, func(c *catalog.Catalog) collection[*domain.Offer] { return c.Offers }),
		rpcCommand(env),
		watchCommand(env),
		versionCommand(env),
	)
	return root
}

// collection — операции сервиса коллекции, доступные из командной строки.
type collection[R domain.Record] interface {
	List(ctx context.Context, q domain.ListQuery) ([]R, error)
	Get(ctx context.Context, id string) (R, error)
	Create(ctx context.Context, in domain.Input) (R, error)
	Replace(ctx context.Context, id string, in domain.Input) (R, error)
	Patch(ctx context.Context, id string, in domain.Input) (R, error)
	Delete(ctx context.Context, id string) (R, error)
}

// collectionCommand собирает "shopctl <collection> list|get|create|replace|patch|delete".
func collectionCommand[R domain.Record](env *environment, schema domain.Schema, pick func(*catalog.Catalog) collection[R]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   schema.Collection,
		Short: fmt.Sprintf("Read and modify %s in the data directory", schema.Collection),
	}

	open := func(cmd *cobra.Command) (collection[R], error) {
		cat, err := env.openCatalog(cmd.Context())
		if err != nil {
			return nil, err
		}
		return pick(cat), nil
	}
	decode := func(cmd *cobra.Command, arg string) (domain.Input, error) {
		doc, err := env.readDocument(arg)
		if err != nil {
			return nil, err
		}
		decoder, err := rest.NewInputDecoder(schema)
		if err != nil {
			return nil, err
		}
		return decoder.DecodeBytes(cmd.Context(), doc)
	}
	printRecord := func(message string, rec R) error {
		out := map[string]any{schema.Singular: domain.AsMap(rec)}
		if message != "" {
			out["message"] = message
		}
		return env.print(out)
	}

	var params query.Params
	list := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s with optional filter, sort and paging", schema.Collection),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := params.ListQuery()
			if err != nil {
				return err
			}
			svc, err := open(cmd)
			if err != nil {
				return err
			}
			records, err := svc.List(cmd.Context(), q)
			if err != nil {
				return errors.Wrapf(err, "list %s", schema.Collection)
			}
			items := make([]map[string]any, 0, len(records))
			for _, rec := range records {
				items = append(items, domain.AsMap(rec))
			}
			return env.print(map[string]any{schema.Collection: items})
		},
	}
	listFlags := list.Flags()
	listFlags.StringVar(&params.Field, "field", "", "filter column")
	listFlags.StringVar(&params.Operator, "operator", "", "filter operator: equals|contains")
	listFlags.StringVar(&params.Value, "value", "", "filter operand")
	listFlags.StringVar(&params.SortField, "sort-field", "", "sort column (default "+schema.DefaultSort+")")
	listFlags.StringVar(&params.SortDirection, "sort-direction", "", "ASC or DESC")
	listFlags.StringVar(&params.Page, "page", "", "page number, starting at 1")
	listFlags.StringVar(&params.Limit, "limit", "", "page size")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Print a single %s", schema.Singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open(cmd)
			if err != nil {
				return err
			}
			rec, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return errors.Wrapf(err, "get %s %s", schema.Singular, args[0])
			}
			return printRecord("", rec)
		},
	}

	create := &cobra.Command{
		Use:   "create <json|->",
		Short: fmt.Sprintf("Add a %s", schema.Singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := decode(cmd, args[0])
			if err != nil {
				return err
			}
			svc, err := open(cmd)
			if err != nil {
				return err
			}
			rec, err := svc.Create(cmd.Context(), in)
			if err != nil {
				return errors.Wrapf(err, "create %s", schema.Singular)
			}
			return printRecord(schema.Title+" added successfully", rec)
		},
	}

	update := func(use, short string, apply func(collection[R], context.Context, string, domain.Input) (R, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id> <json|->",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				in, err := decode(cmd, args[1])
				if err != nil {
					return err
				}
				svc, err := open(cmd)
				if err != nil {
					return err
				}
				rec, err := apply(svc, cmd.Context(), args[0], in)
				if err != nil {
					return errors.Wrapf(err, "%s %s %s", use, schema.Singular, args[0])
				}
				return printRecord(schema.Title+" updated successfully", rec)
			},
		}
	}
	replace := update("replace", fmt.Sprintf("Replace every declared field of a %s", schema.Singular),
		func(svc collection[R], ctx context.Context, id string, in domain.Input) (R, error) {
			return svc.Replace(ctx, id, in)
		})
	patch := update("patch", fmt.Sprintf("Change selected fields of a %s", schema.Singular),
		func(svc collection[R], ctx context.Context, id string, in domain.Input) (R, error) {
			return svc.Patch(ctx, id, in)
		})

	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s", schema.Singular),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open(cmd)
			if err != nil {
				return err
			}
			rec, err := svc.Delete(cmd.Context(), args[0])
			if err != nil {
				return errors.Wrapf(err, "delete %s %s", schema.Singular, args[0])
			}
			return printRecord(schema.Title+" deleted successfully", rec)
		},
	}

	cmd.AddCommand(list, get, create, replace, patch, remove)
	return cmd
}

func versionCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintln(env.out, version.String())
			return err
		},
	}
}
