package cli

import (
	"fmt"

	"quiz-game-service/internal/domain"
)

// sampleCatalog is served from memory when Postgres is not configured and
// is what the seed command inserts.
func sampleCatalog() domain.Catalog {
	c := domain.Catalog{
		Categories: []domain.Category{
			{ID: "animals", Name: "Animals"},
			{ID: "history", Name: "History"},
		},
	}
	add := func(id, category string, difficulty int, content string, correct string, wrong ...string) {
		c.Questions = append(c.Questions, domain.Question{ID: id, Content: content, CategoryID: category, Difficulty: difficulty})
		c.Answers = append(c.Answers, domain.Answer{ID: id + "-a0", Name: correct, Correct: true, QuestionID: id})
		for i, w := range wrong {
			c.Answers = append(c.Answers, domain.Answer{ID: fmt.Sprintf("%s-a%d", id, i+1), Name: w, QuestionID: id})
		}
	}

	add("animals-1", "animals", 1, "Which animal is known as the king of the jungle?", "Lion", "Zebra", "Giraffe")
	add("animals-2", "animals", 1, "How many legs does a spider have?", "Eight", "Six", "Ten")
	add("animals-3", "animals", 1, "What colour was Henry IV's white horse?", "White", "Black", "Brown")
	add("animals-4", "animals", 2, "Which mammal is able to fly?", "Bat", "Flying squirrel", "Sugar glider")
	add("animals-5", "animals", 2, "What is a group of crows called?", "Murder", "Flock", "Parliament")
	add("animals-6", "animals", 3, "Which animal has the longest gestation period?", "Elephant", "Blue whale", "Giraffe")
	add("history-1", "history", 1, "In which year did the Berlin Wall fall?", "1989", "1991", "1985")
	add("history-2", "history", 1, "Who was the first president of the United States?", "George Washington", "Thomas Jefferson", "John Adams")
	add("history-3", "history", 2, "Which empire built Machu Picchu?", "Inca", "Aztec", "Maya")
	add("history-4", "history", 3, "In which year was the Treaty of Westphalia signed?", "1648", "1618", "1713")
	return c
}
