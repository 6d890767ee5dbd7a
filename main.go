package main

import (
	"context"
	"flag"
	"log"

	"github.com/samuelfneumann/gocrawler/agent/random"
	"github.com/samuelfneumann/gocrawler/environment/envconfig"
	"github.com/samuelfneumann/gocrawler/environment/locomotion/crawler"
	"github.com/samuelfneumann/gocrawler/experiment"
	"github.com/samuelfneumann/gocrawler/experiment/tracker"
	"github.com/samuelfneumann/gocrawler/experiment/trackers"
	"github.com/ttacon/chalk"
)

func main() {
	configFile := flag.String("config", "", "JSON experiment config; "+
		"a random agent on the Crawler is run if empty")
	index := flag.Int("i", 0, "Index of the agent configuration to run")
	seed := flag.Uint64("seed", 192382, "Seed for the environment and agent")
	returnFile := flag.String("returns", "./returns.bin", "Gob file of "+
		"episodic returns")
	lengthFile := flag.String("lengths", "./lengths.bin", "Gob file of "+
		"episode lengths")
	dbFile := flag.String("db", "", "If set, episodes are also stored in "+
		"this SQLite database")
	renderFile := flag.String("render", "", "If set, the final state of "+
		"the crawler is rendered to this PNG file")
	progress := flag.Bool("progress", true, "Display a progress bar")
	flag.Parse()

	conf := experiment.Config{
		Type:      experiment.OnlineExp,
		MaxSteps:  10_000,
		EnvConf:   envconfig.NewConfig(envconfig.Crawler, envconfig.Walk, 1000, 0.99),
		AgentConf: random.NewConfigList([]float64{-1}, []float64{1}),
	}
	if *configFile != "" {
		var err error
		if conf, err = experiment.LoadConfig(*configFile); err != nil {
			log.Fatalf("could not load config: %v", err)
		}
	}

	returns := trackers.NewReturn(*returnFile)
	lengths := trackers.NewEpisodeLength(*lengthFile)
	t := []tracker.Tracker{returns, lengths}

	var db *trackers.SQLite
	if *dbFile != "" {
		db = trackers.NewSQLite(*dbFile)
		if err := db.Init(context.Background()); err != nil {
			log.Fatalf("could not open episode database: %v", err)
		}
		defer db.Close()
		t = append(t, db)
	}

	exp, err := conf.CreateExp(*index, *seed, t)
	if err != nil {
		log.Fatalf("could not create experiment: %v", err)
	}
	online, isOnline := exp.(*experiment.Online)
	if isOnline && *progress {
		online.ShowProgress(50)
	}

	log.Print(chalk.Green)
	log.Printf("Running %v for %v steps with agent %v", conf.EnvConf.Environment,
		conf.MaxSteps, conf.AgentConf.At(*index))
	log.Print(chalk.Reset)

	if err := exp.Run(); err != nil {
		log.Fatalf("could not run experiment: %v", err)
	}
	if err := exp.Save(); err != nil {
		log.Fatalf("could not save experiment data: %v", err)
	}

	data := returns.Returns()
	log.Print(chalk.Blue)
	log.Printf("Finished %v episodes", len(data))
	if n := len(data); n > 0 {
		last := data[max(0, n-10):]
		log.Printf("Last returns: %v", last)
	}
	if db != nil {
		log.Printf("Episodes stored under run %v in %v", db.RunID(), *dbFile)
	}
	log.Print(chalk.Reset)

	if *renderFile != "" && isOnline {
		c, ok := online.Environment.(*crawler.Crawler)
		if !ok {
			log.Fatalf("cannot render environment %v",
				conf.EnvConf.Environment)
		}
		if err := c.Render(*renderFile); err != nil {
			log.Fatalf("could not render: %v", err)
		}
		log.Print(chalk.Yellow)
		log.Printf("Rendered crawler to %v", *renderFile)
		log.Print(chalk.Reset)
	}
}
