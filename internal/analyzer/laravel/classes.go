package laravel

import (
	"github.com/codeWithUali/laradoc/internal/analyzer/php"
)

// loadClasses parses every PHP file below dir and returns the declared
// classes in file order
func loadClasses(dir string) ([]php.ClassInfo, error) {
	files, err := php.ParseDir(dir)
	if err != nil {
		return nil, err
	}

	var classes []php.ClassInfo
	for _, f := range files {
		classes = append(classes, f.Classes...)
	}
	return classes, nil
}

// newClassRecord converts a parsed class into its analysis record. Only
// public methods declared on the class itself are listed, constructors
// excluded.
func newClassRecord(class php.ClassInfo) ClassRecord {
	record := ClassRecord{
		Name:       class.FullName,
		ShortName:  class.Name,
		Namespace:  class.Namespace,
		File:       class.FilePath,
		Methods:    []string{},
		DocComment: class.DocComment,
		Parent:     class.Extends,
	}
	for _, m := range class.Methods {
		if m.Visibility != "public" || m.Name == "__construct" {
			continue
		}
		record.Methods = append(record.Methods, m.Name)
	}
	return record
}

// analyzeClassDir returns a record for every class declared below dir
func analyzeClassDir(dir string) ([]ClassRecord, error) {
	classes, err := loadClasses(dir)
	if err != nil {
		return nil, err
	}

	records := make([]ClassRecord, 0, len(classes))
	for _, class := range classes {
		records = append(records, newClassRecord(class))
	}
	return records, nil
}
