package entity

// All returns every model in migration order (referenced tables first).
func All() []interface{} {
	return []interface{}{
		&Supplier{},
		&File{},
		&Material{},
		&Requirement{},
		&Component{},
		&ComponentComponent{},
		&ComponentFile{},
	}
}
