package registry

import "propboard/internal/domain"

// SuperBowlLX is the prop sheet the board ships with.
func SuperBowlLX() *Registry {
	return MustNew(superBowlQuestions(), superBowlPlayers())
}

func superBowlQuestions() []domain.Question {
	return []domain.Question{
		{ID: 1, Prompt: "1) Length of National Anthem", Options: []string{"Over 120 sec", "Under 120 sec"}},
		{ID: 2, Prompt: "2) Coin Toss", Options: []string{"Heads", "Tails"}},
		{ID: 3, Prompt: "3) First Offensive Play", Options: []string{"Run", "Pass"}},
		{ID: 4, Prompt: "4) Team to Score First", Options: []string{"Patriots", "Seahawks"}},
		{ID: 5, Prompt: "5) First Turnover", Options: []string{"Fumble", "Interception", "Turnover on Downs", "Missed FG"}},
		{ID: 6, Prompt: "6) First Accepted Penalty", Options: []string{"Patriots", "Seahawks"}},
		{ID: 7, Prompt: "7) First Team to 10 Points", Options: []string{"Patriots", "Seahawks", "Neither"}},
		{ID: 8, Prompt: "8) Score in Last 2 Minutes of 1st Half", Options: []string{"Yes", "No"}},
		{ID: 9, Prompt: "9) First Halftime Song", Options: []string{"ALAMBRE PuA", "La Mudanza", "Titi Me Pregunto", "NUEVAYoL", "Other"}},
		{ID: 10, Prompt: "10) Guest Performer Appears", Options: []string{"Yes", "No"}},
		{ID: 11, Prompt: "11) Total Halftime Songs", Options: []string{"Over 11.5", "Under 11.5"}},
		{ID: 12, Prompt: "12) Players to Attempt a Pass", Options: []string{"Over 2.5", "Under 2.5"}},
		{ID: 13, Prompt: "13) Most Passing Yards", Options: []string{"Drake Maye", "Sam Darnold", "Other"}},
		{ID: 14, Prompt: "14) Most Rushing Yards", Options: []string{"Rhamondre Stevenson", "Kenneth Walker III", "Other"}},
		{ID: 15, Prompt: "15) Most Receiving Yards", Options: []string{"Stephon Diggs", "Hunter Henry", "JSN", "Cooper Kupp", "Other"}},
		{ID: 16, Prompt: "16) Gatorade Color", Options: []string{"Lime/Green/Yellow", "Clear/Water", "Red/Pink", "Blue", "Orange", "Purple"}},
		{ID: 17, Prompt: "17) Score in Last 2 Minutes of 4th Qtr", Options: []string{"Yes", "No"}},
		{ID: 18, Prompt: "18) Super Bowl Winner", Options: []string{"Patriots", "Seahawks"}},
		{ID: 19, Prompt: "19) Total Points O/U 46.5", Options: []string{"Over 46.5", "Under 46.5"}},
		{ID: 20, Prompt: "20) Super Bowl MVP", Options: []string{"Drake Maye", "Sam Darnold", "Any Other Player"}},
	}
}

func superBowlPlayers() []domain.Player {
	return []domain.Player{
		{ID: "bob", Name: "Bob"},
		{ID: "tara", Name: "Tara"},
		{ID: "frank", Name: "Frank"},
	}
}
