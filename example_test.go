package viewerpdf_test

import (
	"context"
	"fmt"
	"log"

	viewerpdf "github.com/porticus-lab/go-viewer-pdf"
)

func Example() {
	cookies, err := viewerpdf.LoadCookies("cookies.json")
	if err != nil {
		log.Fatal(err)
	}

	// One browser is reused for every document it opens.
	b, err := viewerpdf.NewBrowser(viewerpdf.WithCookies(cookies), viewerpdf.WithNoSandbox())
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	ctx := context.Background()
	v, err := b.Open(ctx, "https://example.com/books/viewer/some-book")
	if err != nil {
		log.Fatal(err)
	}
	defer v.Close()

	total, err := v.TotalPages(ctx)
	if err != nil {
		log.Fatal(err)
	}

	cfg := viewerpdf.DocumentConfig{TotalPages: total, TempDir: "temp_images", OutputPath: "book.pdf"}
	report, err := viewerpdf.Capture(ctx, v, cfg)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("captured %d of %d pages\n", len(report.Pages), total)

	res, err := viewerpdf.NewAssembler(nil).AssembleFile(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("book.pdf: %d pages, %d bytes\n", res.PageCount(), res.Len())
}

func Example_batch() {
	cfg, err := viewerpdf.LoadBatchConfig("viewerpdf.yaml")
	if err != nil {
		log.Fatal(err)
	}

	opener, err := viewerpdf.NewBrowserOpener(cfg, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer opener.Close()

	reports, err := viewerpdf.NewRunner(opener, cfg, nil).Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range reports {
		if r.Err != nil {
			fmt.Printf("%s: %v\n", r.URL, r.Err)
			continue
		}
		fmt.Printf("%s -> %s\n", r.URL, r.Config.OutputPath)
	}
}

func ExampleAssembler_Assemble() {
	// Rebuild a PDF from page files left by an earlier capture.
	res, err := viewerpdf.NewAssembler(nil).Assemble(context.Background(), "temp_images/some_book", 40)
	if err != nil {
		log.Fatal(err)
	}
	if len(res.Skipped) > 0 {
		fmt.Println("missing pages:", res.Skipped)
	}
	if err := res.WriteToFile("some_book.pdf", 0o644); err != nil {
		log.Fatal(err)
	}
}
