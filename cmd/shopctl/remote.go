package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/costumeshop/internal/messaging/kafka"
	grpcsvc "github.com/vladislavdragonenkov/costumeshop/internal/service/grpc"
	costumeshopv1 "github.com/vladislavdragonenkov/costumeshop/proto/costumeshop/v1"
)

// rpcCommand — чтение каталога через gRPC API работающего сервиса.
func rpcCommand(env *environment) *cobra.Command {
	var (
		req    costumeshopv1.ListRequest
		filter costumeshopv1.Filter
	)

	cmd := &cobra.Command{
		Use:   "rpc <shops|costumes|offers> [id]",
		Short: "Query a running service over gRPC",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dialClient(env)
			if err != nil {
				return err
			}
			defer client.Close()

			if filter.Field != "" {
				req.Filter = &filter
			}
			out, err := callRemote(cmd.Context(), client, args, req)
			if err != nil {
				return errors.Wrapf(err, "rpc %s", args[0])
			}
			return env.print(out)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&env.grpcAddr, "addr", env.grpcAddr, "gRPC address of the service")
	flags.StringVar(&filter.Field, "field", "", "filter column")
	flags.StringVar(&filter.Operator, "operator", "", "filter operator: equals|contains")
	flags.StringVar(&filter.Value, "value", "", "filter operand")
	flags.StringVar(&req.SortField, "sort-field", "", "sort column")
	flags.StringVar(&req.SortDirection, "sort-direction", "", "ASC or DESC")
	flags.IntVar(&req.Page, "page", 0, "page number, starting at 1")
	flags.IntVar(&req.Limit, "limit", 0, "page size")
	return cmd
}

// dialClient подменяется в тестах.
var dialClient = func(env *environment) (*grpcsvc.Client, error) {
	return grpcsvc.Dial(env.grpcAddr)
}

// callRemote выбирает метод по коллекции и наличию идентификатора.
func callRemote(ctx context.Context, client *grpcsvc.Client, args []string, req costumeshopv1.ListRequest) (any, error) {
	collection := args[0]
	if len(args) == 1 {
		var (
			records []grpcsvc.Record
			err     error
		)
		switch collection {
		case "shops":
			records, err = client.Shops(ctx, req)
		case "costumes":
			records, err = client.Costumes(ctx, req)
		case "offers":
			records, err = client.Offers(ctx, req)
		default:
			return nil, errors.Errorf("unknown collection %q", collection)
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{collection: records}, nil
	}

	id := args[1]
	switch collection {
	case "shops":
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, errors.Errorf("shop id must be an integer, got %q", id)
		}
		return client.Shop(ctx, n)
	case "costumes":
		return client.Costume(ctx, id)
	case "offers":
		return client.Offer(ctx, id)
	default:
		return nil, errors.Errorf("unknown collection %q", collection)
	}
}

// watchCommand печатает события изменений каталога из Kafka до Ctrl+C.
func watchCommand(env *environment) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print record change events published by the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			brokers := env.brokers
			if len(brokers) == 0 {
				return errors.New("no kafka brokers: set --brokers or COSTUMESHOP_KAFKA_BROKERS")
			}
			consumer, err := kafka.NewConsumer(brokers, group, []string{env.topic}, func(_ context.Context, event *kafka.RecordEvent) error {
				return env.print(event)
			})
			if err != nil {
				return errors.Wrap(err, "connect to kafka")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			consumer.Start(ctx)
			<-ctx.Done()
			return consumer.Stop()
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&env.brokers, "brokers", env.brokers, "kafka brokers")
	flags.StringVar(&env.topic, "topic", env.topic, "topic with record events")
	flags.StringVar(&group, "group", "shopctl-watch", "consumer group id")
	return cmd
}
