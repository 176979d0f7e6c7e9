package catalog

import "github.com/dalemusser/eventroster/internal/domain/models"

var builtin = []models.Event{
	{ID: "coding", Title: "Coding (C)", Description: "Solve programming problems in C within the time limit.", Capacity: 2},
	{ID: "debugging", Title: "Debugging", Description: "Find and fix bugs in given code.", Capacity: 2},
	{ID: "solo-dance", Title: "Solo Dance", Description: "Showcase your dancing skills in individual performance.", Capacity: 1},
	{ID: "group-dance", Title: "Group Dance", Description: "Team dance performance with choreography.", Capacity: 8},
	{ID: "solo-singing", Title: "Solo Singing", Description: "Individual singing performance showcasing vocal talent.", Capacity: 1},
	{ID: "solo-instrumental", Title: "Solo Instrumental", Description: "Individual instrumental music performance.", Capacity: 1},
	{ID: "photography", Title: "Photography", Description: "Capture the best moments and showcase photography skills.", Capacity: 1},
	{ID: "face-painting", Title: "Face Painting", Description: "Creative face painting competition with artistic designs.", Capacity: 1},
	{ID: "reels-creation", Title: "Reels Creation", Description: "Create engaging short video content and reels.", Capacity: 3},
	{ID: "general-quiz", Title: "General Quiz", Description: "Test your general knowledge in quiz competition.", Capacity: 2},
	{ID: "hindi-essay", Title: "Hindi Essay", Description: "Write compelling essays in Hindi on given topics.", Capacity: 1},
	{ID: "kannada-essay", Title: "Kannada Essay", Description: "Write compelling essays in Kannada on given topics.", Capacity: 1},
	{ID: "fireless-cooking", Title: "Fireless Cooking", Description: "Prepare delicious dishes without using fire or heat.", Capacity: 2},
	{ID: "product-launch", Title: "Product Launch", Description: "Present and launch your innovative product idea.", Capacity: 3},
	{ID: "best-manager", Title: "Best Manager", Description: "Demonstrate your management and leadership skills.", Capacity: 1},
	{ID: "red-carpet", Title: "Red Carpet", Description: "Fashion show and modeling competition.", Capacity: 1},
}
