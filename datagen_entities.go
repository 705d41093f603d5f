//go:build datagen_entities
// +build datagen_entities

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"tasksmith/src/client"
	"tasksmith/src/domain/entities"
	"tasksmith/src/helper/env"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-faker/faker/v4"
)

// Popula a API com um marketplace fictício: cada provider ganha um serviço e
// cada serviço recebe bookings com reviews.
//
//	go run -tags datagen_entities datagen_entities.go -providers 20 -bookings 3

type seedStats struct {
	mu      sync.Mutex
	created map[string]int
	failed  int
}

func (s *seedStats) ok(entityType string) {
	s.mu.Lock()
	s.created[entityType]++
	s.mu.Unlock()
}

func (s *seedStats) fail() {
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
}

func main() {
	_ = env.LoadDotEnv()

	baseURL := flag.String("url", env.GetString("TASKSMITH_API_URL", "http://localhost:3001"), "URL base da API.")
	numProviders := flag.Int("providers", 10, "Número de providers (um serviço cada).")
	bookingsPerService := flag.Int("bookings", 3, "Bookings por serviço.")
	reviewPercentage := flag.Float64("reviews-perc", 70.0, "Percentual de bookings com review (0-100).")
	numWorkers := flag.Int("workers", 4, "Número de goroutines enviando para a API.")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutdown signal received, stopping...")
		cancel()
	}()

	api := client.New(*baseURL)
	if err := api.Health(ctx); err != nil {
		log.Fatalf("API is not healthy at %s: %v", *baseURL, err)
	}

	stats := &seedStats{created: map[string]int{}}
	jobs := make(chan int, *numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go worker(ctx, &wg, api, jobs, stats, *bookingsPerService, *reviewPercentage)
	}

	started := time.Now()
producing:
	for i := 0; i < *numProviders; i++ {
		select {
		case <-ctx.Done():
			break producing
		case jobs <- i:
		}
	}
	close(jobs)

	wg.Wait()
	log.Printf("Seeding finished in %s: %v (failed: %d)", time.Since(started).Round(time.Millisecond), stats.created, stats.failed)
}

func worker(ctx context.Context, wg *sync.WaitGroup, api *client.Client, jobs <-chan int, stats *seedStats, bookings int, reviewPercentage float64) {
	defer wg.Done()

	for range jobs {
		if ctx.Err() != nil {
			return
		}
		if err := seedProvider(ctx, api, stats, bookings, reviewPercentage); err != nil {
			stats.fail()
			log.Printf("ERROR seeding provider: %v", err)
		}
	}
}

func seedProvider(ctx context.Context, api *client.Client, stats *seedStats, bookings int, reviewPercentage float64) error {
	provider := entities.NewUser(faker.Name(), strings.ToLower(faker.Email()), entities.UserProvider)
	provider.Phone = faker.Phonenumber()
	provider.Description = faker.Sentence()
	provider.HourlyRate = float64(gofakeit.Number(25, 150))
	provider.Experience = fmt.Sprintf("%d years", gofakeit.Number(1, 25))
	provider.Location = faker.GetRealAddress().City
	provider.OnboardingCompleted = "true"

	providerEntity, err := create(ctx, api, stats, entities.UserType, provider)
	if err != nil {
		return err
	}

	category := gofakeit.RandomString(entities.ServiceCategories)
	low := gofakeit.Number(20, 80)
	service := entities.NewService(
		fmt.Sprintf("%s %s", strings.ReplaceAll(category, "-", " "), faker.Word()),
		category,
		provider.Name,
		fmt.Sprintf("$%d-$%d", low, low+gofakeit.Number(20, 200)),
	)
	service.ProviderID = providerEntity.ID
	service.Description = faker.Paragraph()
	service.Location = provider.Location

	serviceEntity, err := create(ctx, api, stats, entities.ServiceType, service)
	if err != nil {
		return err
	}
	service.ID = serviceEntity.ID

	for i := 0; i < bookings; i++ {
		if err := seedBooking(ctx, api, stats, service, reviewPercentage); err != nil {
			return err
		}
	}

	return nil
}

func seedBooking(ctx context.Context, api *client.Client, stats *seedStats, service entities.Service, reviewPercentage float64) error {
	customer := entities.NewUser(faker.Name(), strings.ToLower(faker.Email()), entities.UserCustomer)
	customer.Location = faker.GetRealAddress().City

	customerEntity, err := create(ctx, api, stats, entities.UserType, customer)
	if err != nil {
		return err
	}

	booking := entities.NewBooking(service, customer.Name, customer.Email)
	booking.CustomerID = customerEntity.ID
	booking.CustomerPhone = faker.Phonenumber()
	booking.PreferredDate = gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 1, 0)).Format("2006-01-02")
	booking.PreferredTime = fmt.Sprintf("%02d:00", gofakeit.Number(8, 18))
	booking.Details = faker.Sentence()
	booking.Status = gofakeit.RandomString([]string{entities.BookingPending, entities.BookingConfirmed, entities.BookingCompleted})

	bookingEntity, err := create(ctx, api, stats, entities.BookingType, booking)
	if err != nil {
		return err
	}
	booking.ID = bookingEntity.ID

	if gofakeit.Float64Range(0, 100) >= reviewPercentage {
		return nil
	}

	review := entities.NewReview(booking, service.ProviderID, gofakeit.Number(1, 5), faker.Sentence()+" "+faker.Sentence())
	_, err = create(ctx, api, stats, entities.ReviewType, review)
	return err
}

func create(ctx context.Context, api *client.Client, stats *seedStats, entityType string, record any) (*entities.Entity, error) {
	data, err := entities.ToData(record)
	if err != nil {
		return nil, err
	}

	created, err := api.Create(ctx, entityType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", entityType, err)
	}

	stats.ok(entityType)
	return created, nil
}
