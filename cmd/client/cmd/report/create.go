package report

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Civic-3-io/citizen-connect-ind/internal/app/client"
	reportdomain "github.com/Civic-3-io/citizen-connect-ind/internal/domain/report"
)

var (
	createTitle       string
	createCategory    string
	createDescription string
	createLocation    string
	createLatitude    float64
	createLongitude   float64
	createPriority    string
	createAnonymous   bool
	createPhotos      []string
)

var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new report",
	Long: `Queues a new civic issue report. The report is stored on this device
immediately and submitted to the authority on the next sync.

Example:
  citizenconnect report create \
    --title "Pothole on MG Road" \
    --category roads \
    --description "Large pothole near the bus stop" \
    --location "MG Road, opposite Metro station" \
    --priority high \
    --photo ./pothole.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := client.FromContext(cmd.Context())
		if !ok {
			return fmt.Errorf("application not initialized")
		}

		payload := reportdomain.Payload{
			Title:       createTitle,
			Category:    reportdomain.Category(createCategory),
			Description: createDescription,
			Location:    createLocation,
			Priority:    reportdomain.Priority(createPriority),
			Anonymous:   createAnonymous,
		}
		if cmd.Flags().Changed("latitude") || cmd.Flags().Changed("longitude") {
			payload.Latitude = &createLatitude
			payload.Longitude = &createLongitude
		}

		var attachments []reportdomain.Attachment
		for _, path := range createPhotos {
			att, err := reportdomain.NewAttachment(path)
			if err != nil {
				return fmt.Errorf("failed to attach %s: %w", path, err)
			}
			attachments = append(attachments, att)
		}

		rec, err := app.Queue().Enqueue(cmd.Context(), payload, attachments)
		if err != nil {
			return fmt.Errorf("failed to queue report: %w", err)
		}

		fmt.Println("Report queued for submission.")
		fmt.Printf("  Local ID:  %s\n", rec.LocalID)
		fmt.Printf("  Category:  %s\n", rec.Payload.Category.DisplayName())
		fmt.Printf("  Priority:  %s\n", rec.Payload.Priority.DisplayName())
		fmt.Printf("  State:     %s\n", stateBadge(rec.State))
		if len(rec.Attachments) > 0 {
			fmt.Printf("  Photos:    %d\n", len(rec.Attachments))
		}
		fmt.Println()
		fmt.Println("It will be submitted automatically when online, or run: citizenconnect sync")

		return nil
	},
}

func init() {
	CreateCmd.Flags().StringVarP(&createTitle, "title", "t", "", "short summary of the issue (required)")
	CreateCmd.Flags().StringVarP(&createCategory, "category", "c", "", "issue category: roads, water, electricity, waste, drainage, streetlight, other (required)")
	CreateCmd.Flags().StringVarP(&createDescription, "description", "d", "", "detailed description (required)")
	CreateCmd.Flags().StringVarP(&createLocation, "location", "l", "", "street address or landmark")
	CreateCmd.Flags().Float64Var(&createLatitude, "latitude", 0, "GPS latitude")
	CreateCmd.Flags().Float64Var(&createLongitude, "longitude", 0, "GPS longitude")
	CreateCmd.Flags().StringVarP(&createPriority, "priority", "p", "medium", "priority: low, medium, high")
	CreateCmd.Flags().BoolVar(&createAnonymous, "anonymous", false, "submit without reporter identity")
	CreateCmd.Flags().StringArrayVar(&createPhotos, "photo", nil, "photo to attach (repeatable, up to 3)")

	_ = CreateCmd.MarkFlagRequired("title")
	_ = CreateCmd.MarkFlagRequired("category")
	_ = CreateCmd.MarkFlagRequired("description")
}
