// Command reviewnet-cli provides CLI tools for interacting with a reviewnet
// node.
//
// # Commands
//
// submit: Submit a paper.
//
//	reviewnet-cli submit --node=http://localhost:8080 --key=<hex> \
//	    --title="Dense Ledgers" --abstract="..." --category=systems
//
// review: Submit an encrypted review of a paper.
//
//	reviewnet-cli review --node=http://localhost:8080 --key=<hex> \
//	    --cipher-seed=<hex> --paper=1 --recommend=1 --quality=3 --comment="..."
//
// papers: List papers the caller may review.
//
//	reviewnet-cli papers --node=http://localhost:8080 --key=<hex>
//
// mine: List papers the caller authored.
//
// reviews: List all reviews of a paper.
//
//	reviewnet-cli reviews --node=http://localhost:8080 --paper=1
//
// retrieve: Retrieve a review's ciphertext handles (author or superuser).
//
// toggle: Flip the active flag of an owned paper.
//
// deactivate: Force-deactivate a paper (superuser).
//
// counts: Display ledger totals.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/OswaldHeaney/reviewnet/client"
	"github.com/OswaldHeaney/reviewnet/cmd/common"
	"github.com/OswaldHeaney/reviewnet/fhe"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "submit":
		err = runSubmit(args)
	case "review":
		err = runReview(args)
	case "papers":
		err = runPapers(args)
	case "mine":
		err = runMine(args)
	case "reviews":
		err = runReviews(args)
	case "retrieve":
		err = runRetrieve(args)
	case "toggle":
		err = runToggle(args)
	case "deactivate":
		err = runDeactivate(args)
	case "counts":
		err = runCounts(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`reviewnet-cli - CLI tools for a reviewnet node

Usage:
  reviewnet-cli <command> [options]

Commands:
  submit      Submit a paper
  review      Submit an encrypted review
  papers      List papers the caller may review
  mine        List papers the caller authored
  reviews     List all reviews of a paper
  retrieve    Retrieve a review's ciphertext handles
  toggle      Flip the active flag of an owned paper
  deactivate  Force-deactivate a paper (superuser)
  counts      Display ledger totals

Run 'reviewnet-cli <command> --help' for command-specific options.`)
}

// connFlags adds the flags shared by every command and returns pointers to
// their values.
func connFlags(fs *flag.FlagSet) (node, key, cipherSeed *string) {
	node = fs.String("node", "http://localhost:8080", "Node base URL")
	key = fs.String("key", "", "Hex-encoded Ed25519 private key (generated if empty)")
	cipherSeed = fs.String("cipher-seed", "", "Hex seed matching the node's ciphertext service")
	return node, key, cipherSeed
}

func newClient(node, keyHex, cipherSeed string) (*client.Client, error) {
	key, err := common.LoadOrGenerateSigningKey(keyHex)
	if err != nil {
		return nil, fmt.Errorf("loading key: %w", err)
	}

	var encoder fhe.Encoder
	if cipherSeed != "" {
		svc, err := common.NewCipherService(cipherSeed)
		if err != nil {
			return nil, err
		}
		encoder = svc
	}

	return client.New(client.Config{
		BaseURL:    node,
		PrivateKey: key,
		Encoder:    encoder,
		Timeout:    30 * time.Second,
	})
}

func runSubmit(args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	node, key, seed := connFlags(fs)
	title := fs.String("title", "", "Paper title")
	abstract := fs.String("abstract", "", "Paper abstract")
	category := fs.String("category", "", "Paper category")
	fs.Parse(args)

	c, err := newClient(*node, *key, *seed)
	if err != nil {
		return err
	}

	paperID, err := c.SubmitPaper(context.Background(), *title, *abstract, *category)
	if err != nil {
		return err
	}
	fmt.Printf("Submitted paper %d as %s\n", paperID, c.Principal())
	return nil
}

func runReview(args []string) error {
	fs := flag.NewFlagSet("review", flag.ExitOnError)
	node, key, seed := connFlags(fs)
	paperID := fs.Uint64("paper", 0, "Paper id")
	recommend := fs.Uint("recommend", 1, "Recommendation: 0 reject, 1 accept")
	quality := fs.Uint("quality", 0, "Quality score, 1 to 4")
	comment := fs.String("comment", "", "Public comment")
	fs.Parse(args)

	if *seed == "" {
		return fmt.Errorf("--cipher-seed is required to encode review scores")
	}

	c, err := newClient(*node, *key, *seed)
	if err != nil {
		return err
	}

	reviewID, err := c.SubmitReview(context.Background(), *paperID, uint8(*recommend), uint8(*quality), *comment)
	if err != nil {
		return err
	}
	fmt.Printf("Submitted review %d on paper %d\n", reviewID, *paperID)
	return nil
}

func runPapers(args []string) error {
	fs := flag.NewFlagSet("papers", flag.ExitOnError)
	node, key, seed := connFlags(fs)
	fs.Parse(args)

	c, err := newClient(*node, *key, *seed)
	if err != nil {
		return err
	}

	papers, err := c.ListReviewable(context.Background())
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		fmt.Println("No papers awaiting review")
		return nil
	}
	for _, p := range papers {
		fmt.Printf("%4d  [%s]  %s  (%d reviews)\n", p.ID, p.Category, p.Title, p.ReviewCount)
	}
	return nil
}

func runMine(args []string) error {
	fs := flag.NewFlagSet("mine", flag.ExitOnError)
	node, key, seed := connFlags(fs)
	fs.Parse(args)

	c, err := newClient(*node, *key, *seed)
	if err != nil {
		return err
	}

	papers, err := c.ListOwn(context.Background())
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		fmt.Println("No papers authored by this key")
		return nil
	}
	for _, p := range papers {
		state := "active"
		if !p.Active {
			state = "inactive"
		}
		fmt.Printf("%4d  [%s]  %s  (%d reviews, %s)\n", p.ID, p.Category, p.Title, p.ReviewCount, state)
	}
	return nil
}

func runReviews(args []string) error {
	fs := flag.NewFlagSet("reviews", flag.ExitOnError)
	node, key, seed := connFlags(fs)
	paperID := fs.Uint64("paper", 0, "Paper id")
	fs.Parse(args)

	c, err := newClient(*node, *key, *seed)
	if err != nil {
		return err
	}

	reviews, err := c.ListReviews(context.Background(), *paperID)
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		fmt.Printf("No reviews on paper %d\n", *paperID)
		return nil
	}
	for _, rv := range reviews {
		fmt.Printf("%4d  by %s\n      comment: %q\n", rv.ID, rv.Reviewer, rv.Comment)
	}
	return nil
}

func runRetrieve(args []string) error {
	fs := flag.NewFlagSet("retrieve", flag.ExitOnError)
	node, key, seed := connFlags(fs)
	reviewID := fs.Uint64("review", 0, "Review id")
	fs.Parse(args)

	c, err := newClient(*node, *key, *seed)
	if err != nil {
		return err
	}

	resp, err := c.GetEncryptedReview(context.Background(), *reviewID)
	if err != nil {
		return err
	}
	fmt.Printf("Review %d on paper %d\n", resp.ReviewID, resp.PaperID)
	fmt.Printf("  recommendation handle: %s\n", resp.Recommendation)
	fmt.Printf("  quality handle:        %s\n", resp.Quality)
	return nil
}

func runToggle(args []string) error {
	fs := flag.NewFlagSet("toggle", flag.ExitOnError)
	node, key, seed := connFlags(fs)
	paperID := fs.Uint64("paper", 0, "Paper id")
	fs.Parse(args)

	c, err := newClient(*node, *key, *seed)
	if err != nil {
		return err
	}
	if err := c.ToggleActive(context.Background(), *paperID); err != nil {
		return err
	}
	fmt.Printf("Toggled paper %d\n", *paperID)
	return nil
}

func runDeactivate(args []string) error {
	fs := flag.NewFlagSet("deactivate", flag.ExitOnError)
	node, key, seed := connFlags(fs)
	paperID := fs.Uint64("paper", 0, "Paper id")
	fs.Parse(args)

	c, err := newClient(*node, *key, *seed)
	if err != nil {
		return err
	}
	if err := c.ForceDeactivate(context.Background(), *paperID); err != nil {
		return err
	}
	fmt.Printf("Deactivated paper %d\n", *paperID)
	return nil
}

func runCounts(args []string) error {
	fs := flag.NewFlagSet("counts", flag.ExitOnError)
	node, key, seed := connFlags(fs)
	fs.Parse(args)

	c, err := newClient(*node, *key, *seed)
	if err != nil {
		return err
	}

	counts, err := c.Counts(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Papers:  %d\nReviews: %d\n", counts.TotalPapers, counts.TotalReviews)
	return nil
}
