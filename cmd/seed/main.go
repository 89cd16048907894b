// Command main runs the database seeder for HireLink.
package main

import (
	"flag"
	"log"

	"hirelink/internal/bootstrap"
	"hirelink/internal/config"
	"hirelink/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of applicants to create")
	numEmployers := flag.Int("employers", 10, "Number of employers to create")
	jobsPerEmployer := flag.Int("jobs", 3, "Number of postings per employer")
	numThreads := flag.Int("threads", 40, "Number of conversations to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d employers, %d jobs each, %d threads, clean=%v\n",
		*numUsers, *numEmployers, *jobsPerEmployer, *numThreads, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:        *numUsers,
		NumEmployers:    *numEmployers,
		JobsPerEmployer: *jobsPerEmployer,
		NumThreads:      *numThreads,
		ShouldClean:     *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
