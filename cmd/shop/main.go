// Command shop is a terminal storefront: it browses the catalog, keeps a
// cart in a local file and submits it as an order.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"bijouterie/internal/cart"
	"bijouterie/internal/checkout"
	"bijouterie/internal/config"
	"bijouterie/internal/logging"
	"bijouterie/internal/storefront"
)

const usage = `usage: shop [-api URL] [-cart FILE] <command> [args]

commands:
  collections                      list collections
  products [collectionSlug]        list products, optionally for one collection
  add <productSlug> [qty]          add a product to the cart
  remove <productSlug>             remove a product from the cart
  set <productSlug> <qty>          change a quantity (0 removes)
  cart                             show the cart
  clear                            empty the cart
  checkout -name N -phone P -address A
                                   place the order and empty the cart
`

func main() {
	config.Load()
	slog.SetDefault(logging.New(config.AppEnv.LogLevel))

	fs := flag.NewFlagSet("shop", flag.ExitOnError)
	api := fs.String("api", "http://localhost:"+config.AppEnv.Port, "base URL of the API")
	cartFile := fs.String("cart", "cart.json", "file the cart is kept in")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := &shop{
		client: storefront.NewClient(*api, nil),
		cart:   cart.New(cart.NewFileStorage(*cartFile), slog.Default()),
		out:    os.Stdout,
	}
	if err := s.run(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type shop struct {
	client *storefront.Client
	cart   *cart.Cart
	out    io.Writer
}

var errUsage = errors.New("invalid arguments, run shop without arguments for help")

func (s *shop) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "collections":
		return s.collections(ctx)
	case "products":
		slug := ""
		if len(args) > 0 {
			slug = args[0]
		}
		return s.products(ctx, slug)
	case "add":
		if len(args) < 1 {
			return errUsage
		}
		qty := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return errUsage
			}
			qty = n
		}
		return s.add(ctx, args[0], qty)
	case "remove":
		if len(args) != 1 {
			return errUsage
		}
		product, err := s.client.Product(ctx, args[0])
		if err != nil {
			return err
		}
		s.cart.Remove(product.ID.Hex())
		return s.show()
	case "set":
		if len(args) != 2 {
			return errUsage
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return errUsage
		}
		product, err := s.client.Product(ctx, args[0])
		if err != nil {
			return err
		}
		s.cart.UpdateQuantity(product.ID.Hex(), qty)
		return s.show()
	case "cart":
		return s.show()
	case "clear":
		s.cart.Clear()
		return s.show()
	case "checkout":
		return s.checkout(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (s *shop) collections(ctx context.Context) error {
	list, err := s.client.Collections(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME\tDESCRIPTION")
	for _, c := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Slug, c.Name, c.Description)
	}
	return w.Flush()
}

func (s *shop) products(ctx context.Context, collectionSlug string) error {
	collectionID := ""
	if collectionSlug != "" {
		collection, err := s.client.Collection(ctx, collectionSlug)
		if err != nil {
			return err
		}
		collectionID = collection.ID.Hex()
	}

	list, err := s.client.Products(ctx, collectionID)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME\tPRICE\tSTOCK\tCOLLECTION")
	for _, p := range list {
		collection := ""
		if p.Collection != nil {
			collection = p.Collection.Name
		}
		stock := strconv.Itoa(p.Quantity)
		if !p.InStock() {
			stock = "sold out"
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", p.Slug, p.Name, p.Price, stock, collection)
	}
	return w.Flush()
}

func (s *shop) add(ctx context.Context, productSlug string, qty int) error {
	product, err := s.client.Product(ctx, productSlug)
	if err != nil {
		return err
	}
	item := cart.Item{ProductID: product.ID.Hex(), Name: product.Name, Price: product.Price}
	if len(product.Images) > 0 {
		item.Image = product.Images[0]
	}
	s.cart.Add(item, qty)
	return s.show()
}

func (s *shop) show() error {
	items := s.cart.Items()
	if len(items) == 0 {
		_, err := fmt.Fprintln(s.out, "cart is empty")
		return err
	}
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%s\n", item.Name, item.Quantity, item.Price, item.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(w, "TOTAL\t%d\t\t%.2f\n", s.cart.Count(), s.cart.Total())
	return w.Flush()
}

func (s *shop) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "customer name")
	phone := fs.String("phone", "", "customer phone")
	address := fs.String("address", "", "delivery address")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	order, err := s.client.Checkout(ctx, s.cart, checkout.Customer{Name: *name, Phone: *phone, Address: *address})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.out, "order %s placed: %.2f (%s)\n", order.ID.Hex(), order.Total, order.Status)
	return err
}
