package main

import (
	"fmt"
	"os"
	"time"

	"mjcopilot/internal/analysis"
	"mjcopilot/internal/domain"
	"mjcopilot/internal/pattern"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// advisor is the offline co-pilot: it loads a card file, analyzes a hand
// given on the command line and prints the ranked pattern suggestions. It is
// the same engine the Nakama module serves, usable at a physical table.
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	pflag.String("config", "", "path to a config file")
	pflag.String("catalog", "data/patterns.json", "path to the pattern card JSON")
	pflag.String("hand", "", "concealed tiles, space separated (e.g. \"1C 1C 2B J N\")")
	pflag.String("exposed", "", "tiles exposed by other players, space separated")
	pflag.String("discarded", "", "unclaimed discards on the table, space separated")
	pflag.Int("top", 5, "how many patterns to show")
	pflag.Parse()

	viper.SetEnvPrefix("mjcopilot")
	viper.AutomaticEnv()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		log.WithError(err).Fatal("failed to bind flags")
	}
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.WithError(err).Fatal("failed to read config file")
		}
	}

	handArg := viper.GetString("hand")
	if handArg == "" {
		pflag.Usage()
		os.Exit(2)
	}

	catalogPath := viper.GetString("catalog")
	catalog, err := pattern.LoadCatalog(catalogPath)
	if err != nil {
		log.WithError(err).WithField("path", catalogPath).Fatal("failed to load pattern catalog")
	}
	log.WithFields(logrus.Fields{
		"version":  catalog.Version,
		"patterns": len(catalog.Patterns),
	}).Info("catalog loaded")

	concealed, err := domain.ParseTiles(handArg)
	if err != nil {
		log.WithError(err).Fatal("failed to parse hand")
	}
	exposed, err := domain.ParseTiles(viper.GetString("exposed"))
	if err != nil {
		log.WithError(err).Fatal("failed to parse exposed tiles")
	}
	discarded, err := domain.ParseTiles(viper.GetString("discarded"))
	if err != nil {
		log.WithError(err).Fatal("failed to parse discarded tiles")
	}

	pile := &domain.DiscardPile{}
	for _, t := range discarded {
		pile.Add(t, "", time.Now())
	}

	hand := &domain.Hand{Concealed: concealed}
	recs := analysis.AnalyzeHand(catalog, hand, exposed, pile)

	top := viper.GetInt("top")
	if top <= 0 || top > len(recs) {
		top = len(recs)
	}

	fmt.Printf("Hand: %s  (%d tiles, %d jokers)\n\n", domain.TilesString(concealed), len(concealed), hand.CountJokers())
	for i, rec := range recs[:top] {
		printRecommendation(i+1, rec)
	}

	if len(recs) > 0 {
		discards := analysis.SuggestDiscards(hand, recs[0])
		if len(discards) > 0 {
			fmt.Printf("Suggested discards (least valuable first): %s\n", domain.TilesString(discards))
		}
	}
}

func printRecommendation(rank int, rec analysis.Recommendation) {
	fmt.Printf("%d. %s  [%s]\n", rank, rec.Pattern.ID, rec.Completion.Recommendation)
	if rec.Pattern.Description != "" {
		fmt.Printf("   %s\n", rec.Pattern.Description)
	}
	fmt.Printf("   score %.1f  matched %d/%d  jokers needed %d (have %d)\n",
		rec.Completion.Score, rec.Match.TileCount, pattern.PatternTileCount,
		rec.JokerPlan.JokersNeeded, rec.JokerPlan.JokersAvailable)
	if len(rec.Match.Missing) > 0 {
		missing := make([]domain.Tile, len(rec.Match.Missing))
		for i, m := range rec.Match.Missing {
			missing[i] = m.Tile
		}
		fmt.Printf("   missing: %s\n", domain.TilesString(missing))
	}
	fmt.Println()
}
