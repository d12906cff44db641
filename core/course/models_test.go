package course

import "testing"

func TestQueryFilter_Matches(t *testing.T) {
	crs := Course{
		Title:       "Data Science Fundamentals",
		Description: "Analyze and visualize data with Python",
		Category:    "Data Science",
		Level:       LevelBeginner,
	}

	tests := []struct {
		name   string
		filter QueryFilter
		want   bool
	}{
		{name: "empty filter matches", want: true},
		{name: "search matches title", filter: QueryFilter{Search: "fundamentals"}, want: true},
		{name: "search matches description", filter: QueryFilter{Search: "VISUALIZE"}, want: true},
		{name: "search matches category", filter: QueryFilter{Search: "data sci"}, want: true},
		{name: "search is a substring match", filter: QueryFilter{Search: "ndament"}, want: true},
		{name: "search miss", filter: QueryFilter{Search: "blockchain"}, want: false},
		{name: "category is exact", filter: QueryFilter{Category: "Data Science"}, want: true},
		{name: "category miss", filter: QueryFilter{Category: "Data"}, want: false},
		{name: "level match", filter: QueryFilter{Level: LevelBeginner}, want: true},
		{name: "level miss", filter: QueryFilter{Level: LevelAdvanced}, want: false},
		{name: "all fields AND together", filter: QueryFilter{Search: "python", Category: "Data Science", Level: LevelBeginner}, want: true},
		{name: "one failing field rejects", filter: QueryFilter{Search: "python", Category: "Data Science", Level: LevelAdvanced}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(crs); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
