package entity

import "roof-measure/internal/domain/geometry"

// EdgeType классификация ребра плоскости. Пока всегда EdgeUnknown.
type EdgeType string

const (
	EdgeUnknown EdgeType = "unknown"
)

// Edge ребро плоскости от вершины I к вершине I+1
type Edge struct {
	I    int      `json:"i"`
	Type EdgeType `json:"type"`
}

// Plane отдельный скат крыши
type Plane struct {
	ID             string        `json:"id"` // P1, P2, ... в порядке обнаружения
	Pitch          float64       `json:"pitch"`
	PlanAreaFt2    float64       `json:"planAreaFt2"`
	SurfaceAreaFt2 float64       `json:"surfaceAreaFt2"`
	PerimeterFt    float64       `json:"perimeterFt"`
	Polygon        geometry.Ring `json:"polygon"`
	Edges          []Edge        `json:"edges"`
}

// Totals суммарные показатели по всем скатам
type Totals struct {
	PlanAreaFt2    float64 `json:"planAreaFt2"`
	SurfaceAreaFt2 float64 `json:"surfaceAreaFt2"`
	Squares        float64 `json:"squares"` // 1 square = 100 ft² кровли
	PerimeterFt    float64 `json:"perimeterFt"`
}
