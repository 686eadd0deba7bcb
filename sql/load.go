package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed ingredients.sql
var ingredientsSQL string

// Function lists for verification
var IngredientsFunctions = []string{
	"init_ingredients",
	"insert_ingredient",
	"select_all_ingredients",
	"select_ingredients_by_similarity",
	"delete_all_ingredients",
	"count_ingredients",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadIngredientsSql loads ingredient-related SQL functions.
// If force is false and all functions exist already, nothing is executed.
func LoadIngredientsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, IngredientsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing ingredients functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(ingredientsSQL)
	if err != nil {
		return fmt.Errorf("error executing ingredients SQL: %w", err)
	}

	exist, err := checkFunctions(db, IngredientsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL ingredients functions loaded successfully")
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	allExist := len(sqlFunctions) > 0
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
