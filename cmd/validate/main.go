package main

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/jwebster45206/story-crafter/pkg/actor"
	"github.com/jwebster45206/story-crafter/pkg/catalogue"
	"github.com/jwebster45206/story-crafter/pkg/dice"
	"github.com/jwebster45206/story-crafter/pkg/generr"
	"github.com/jwebster45206/story-crafter/pkg/plot"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <catalogue-dir>\n", os.Args[0])
		os.Exit(1)
	}

	dir := os.Args[1]
	validator := &CatalogueValidator{}

	if err := validator.validateDir(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		if code := generr.GetCode(err); code != generr.CodeUnknown {
			fmt.Fprintf(os.Stderr, "Error code: %s\n", code)
		}
		os.Exit(1)
	}

	fmt.Println("Catalogue is valid!")
}

type CatalogueValidator struct {
	errors []string
}

func (v *CatalogueValidator) validateDir(dir string) error {
	fmt.Printf("Validating %s...\n", dir)

	cat, err := catalogue.LoadDir(dir)
	if err != nil {
		return err
	}

	v.errors = nil
	v.validateKeys(cat)
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", dir, strings.Join(v.errors, "\n"))
	}

	// Every side must produce a full pool.
	for _, side := range cat.Actors.SideNames() {
		src, _, err := dice.NewSource(1)
		if err != nil {
			return err
		}
		if _, err := cat.Actors.NewPool(side, actor.DefaultPoolConfig, src); err != nil {
			return fmt.Errorf("side %s: %w", side, err)
		}
	}

	v.printSummary(cat)
	return nil
}

func (v *CatalogueValidator) validateKeys(cat *catalogue.Catalogue) {
	for _, pp := range cat.PlotPoints {
		v.validateKeyFormat("plot point key", pp.ID)
	}
	for _, mp := range cat.MetaPlotPoints {
		v.validateKeyFormat("meta plot point key", mp.ID)
	}
	for _, side := range cat.Actors.SideNames() {
		v.validateKeyFormat("side", side)
	}
}

func (v *CatalogueValidator) validateKeyFormat(fieldName, key string) {
	if !validKeyRegex.MatchString(key) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase kebab-case", fieldName, key))
	}
}

func (v *CatalogueValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *CatalogueValidator) printSummary(cat *catalogue.Catalogue) {
	fmt.Printf("  %d plot points, %d meta plot points, %d sides\n",
		len(cat.PlotPoints), len(cat.MetaPlotPoints), len(cat.Actors.Sides))
	for _, axis := range plot.Axes {
		var structural []int
		for _, pp := range cat.PlotPoints {
			if pp.Category.Structural() {
				structural = append(structural, pp.Ranges[axis]...)
			}
		}
		slices.Sort(structural)
		fmt.Printf("  %-9s structural rolls: %s\n", axis, catalogue.FormatRange(structural))
	}
}

var validKeyRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)
