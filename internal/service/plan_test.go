package service

import (
	"testing"
	"time"
)

func TestWorkoutForDependsOnlyOnWeekday(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 730; i++ {
		date := start.AddDate(0, 0, i)
		workout := WorkoutFor(date)

		switch date.Weekday() {
		case time.Monday, time.Friday:
			if workout == nil || workout.Name != WorkoutA.Name {
				t.Fatalf("%s: expected workout A", date.Format(DateLayout))
			}
		case time.Wednesday:
			if workout == nil || workout.Name != WorkoutB.Name {
				t.Fatalf("%s: expected workout B", date.Format(DateLayout))
			}
		default:
			if workout != nil {
				t.Fatalf("%s: expected rest day, got %s", date.Format(DateLayout), workout.Name)
			}
		}
	}
}

func TestMealAndMissionSelectionIsDeterministic(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 400; i++ {
		date := start.AddDate(0, 0, i)

		wantMeal := date.YearDay() % len(Meals)
		if got := MealIndexFor(date); got != wantMeal {
			t.Fatalf("%s: expected meal index %d, got %d", date.Format(DateLayout), wantMeal, got)
		}
		// 同一天重复调用结果稳定
		if MealIndexFor(date) != MealIndexFor(date) {
			t.Fatalf("%s: meal index not stable", date.Format(DateLayout))
		}

		wantMission := Missions[date.YearDay()%len(Missions)]
		if got := MissionFor(date); got.ID != wantMission.ID {
			t.Fatalf("%s: expected mission %s, got %s", date.Format(DateLayout), wantMission.ID, got.ID)
		}
	}
}

func TestShuffleMealIndexAlwaysDiffers(t *testing.T) {
	for current := 0; current < len(Meals); current++ {
		for i := 0; i < 50; i++ {
			next := ShuffleMealIndex(current)
			if next == current {
				t.Fatalf("shuffle returned current index %d", current)
			}
			if next < 0 || next >= len(Meals) {
				t.Fatalf("shuffle returned out-of-range index %d", next)
			}
		}
	}
}

func TestShuffleMealIndexOutOfRangeCurrent(t *testing.T) {
	for i := 0; i < 50; i++ {
		next := ShuffleMealIndex(-1)
		if next < 0 || next >= len(Meals) {
			t.Fatalf("shuffle returned out-of-range index %d", next)
		}
	}
}
