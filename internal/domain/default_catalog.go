package domain

// DefaultCatalog returns the built-in shape table. Endpoints reproduce the
// illustrative dashboard datasets: East Sea pollock collapsing while
// yellowtail moves north from 2015, squid and anchovy oscillating on a
// decline, and the 2024 West Sea blue crab collapse.
func DefaultCatalog() Catalog {
	return Catalog{
		ProjectionFromYear: 2024,
		Scenarios: map[Scenario]Multipliers{
			Baseline:  {SeaLevel: 1, Warming: 1, Projection: 1},
			Worsening: {SeaLevel: 1.35, Warming: 1.2, Projection: 1.15},
			Improving: {SeaLevel: 0.75, Warming: 0.85, Projection: 0.9},
		},
		Series: []SeriesSpec{
			{
				Label: SeaLevelLabel, Kind: KindSeaLevel, Unit: "mm", Shape: ShapeCumulative,
				RatePerYear: 3.05, Factor: FactorSeaLevel,
				Noise: Noise{Mode: NoiseGaussian, Sigma: 0.5},
			},
			{
				Label: "catch/pollock", Kind: KindCatch, Unit: "kt", Shape: ShapeLinear,
				Start: 80, End: 5, Factor: FactorWarming,
				Noise: Noise{Mode: NoiseUniform, Low: 0.7, High: 1.3},
			},
			{
				Label: "catch/pollock-relative", Kind: KindCatch, Unit: "relative", Shape: ShapeLinear,
				Start: 100, End: 10, RampFrom: 2015, Factor: FactorWarming,
				Noise: Noise{Mode: NoiseUniform, Low: 0.8, High: 1.2},
			},
			{
				Label: "catch/yellowtail", Kind: KindCatch, Unit: "relative", Shape: ShapeLinear,
				Start: 30, End: 90, RampFrom: 2015, Factor: FactorWarming,
				Noise: Noise{Mode: NoiseUniform, Low: 0.8, High: 1.2},
			},
			{
				Label: "catch/squid", Kind: KindCatch, Unit: "kt", Shape: ShapeOscillating,
				Start: 70, End: 25, Amplitude: 20, Cycles: 2.5, Factor: FactorWarming,
			},
			{
				Label: "catch/blue-crab", Kind: KindCatch, Unit: "kt", Shape: ShapeOscillating,
				Start: 20, End: 20, Amplitude: 5, Cycles: 4,
			},
			{
				Label: "catch/octopus", Kind: KindCatch, Unit: "kt", Shape: ShapeLinear,
				Start: 40, End: 20, Factor: FactorWarming,
				Noise: Noise{Mode: NoiseUniform, Low: 0.8, High: 1.2},
			},
			{
				Label: "catch/anchovy", Kind: KindCatch, Unit: "kt", Shape: ShapeOscillating,
				Start: 220, End: 180, Amplitude: 30, Cycles: 5, Factor: FactorWarming,
			},
			{
				Label: "catch/mackerel", Kind: KindCatch, Unit: "kt", Shape: ShapeOscillating,
				Start: 150, End: 150, Amplitude: 25, Cycles: 3,
			},
			{
				Label: "catch/shrimp", Kind: KindCatch, Unit: "kt", Shape: ShapeLinear,
				Start: 50, End: 75, Factor: FactorWarming,
				Noise: Noise{Mode: NoiseUniform, Low: 0.9, High: 1.1},
			},
			{
				Label: "catch/octopus-landings", Kind: KindCatch, Unit: "t", Shape: ShapeLinear,
				Start: 120, End: 50, Factor: FactorWarming,
				Noise: Noise{Mode: NoiseUniform, Low: 0.9, High: 1.1},
			},
			{
				Label: "price/octopus", Kind: KindPrice, Unit: "KRW", Shape: ShapeReciprocal,
				Source: "catch/octopus-landings", Scale: 5000,
				Noise: Noise{Mode: NoiseGaussian, Sigma: 10},
			},
			{
				Label: "index/seafood-price", Kind: KindIndex, Unit: "index", Shape: ShapeLinear,
				Start: 100, End: 165, Factor: FactorWarming,
				Noise: Noise{Mode: NoiseGaussian, Sigma: 3},
			},
			{
				Label: "index/youth-protein-intake", Kind: KindIndex, Unit: "index", Shape: ShapeOscillating,
				Start: 100, End: 88, Amplitude: 1.5, Cycles: 2, Factor: FactorWarming,
				Noise: Noise{Mode: NoiseGaussian, Sigma: 1},
			},
			{
				Label: "index/youth-omega3-intake", Kind: KindIndex, Unit: "index", Shape: ShapeLinear,
				Start: 100, End: 78, Factor: FactorWarming,
				Noise: Noise{Mode: NoiseGaussian, Sigma: 1.5},
			},
		},
		Anomalies: []Anomaly{
			{Label: "catch/blue-crab", Year: 2024, Factor: 0.9, WindowStart: 2019},
		},
		Regions: []Region{
			{Province: "Seoul", Lat: 37.57, Lon: 126.98, SeaLevelRiseCM: 9.5, Impact: "inland"},
			{Province: "Busan", Lat: 35.18, Lon: 129.08, SeaLevelRiseCM: 12.1, Impact: "aquaculture losses from marine heatwaves"},
			{Province: "Daegu", Lat: 35.87, Lon: 128.60, SeaLevelRiseCM: 10.0, Impact: "inland"},
			{Province: "Incheon", Lat: 37.46, Lon: 126.71, SeaLevelRiseCM: 11.2, Impact: "sharp drop in West Sea blue crab catch"},
			{Province: "Gwangju", Lat: 35.16, Lon: 126.85, SeaLevelRiseCM: 10.2, Impact: "inland"},
			{Province: "Daejeon", Lat: 36.35, Lon: 127.38, SeaLevelRiseCM: 9.8, Impact: "inland"},
			{Province: "Ulsan", Lat: 35.54, Lon: 129.31, SeaLevelRiseCM: 11.8, Impact: "warm water and species shift"},
			{Province: "Gyeonggi-do", Lat: 37.41, Lon: 127.52, SeaLevelRiseCM: 10.8, Impact: "coastal erosion"},
			{Province: "Gangwon-do", Lat: 37.82, Lon: 128.16, SeaLevelRiseCM: 9.8, Impact: "loss of East Sea pollock grounds"},
			{Province: "Chungcheongbuk-do", Lat: 36.80, Lon: 127.70, SeaLevelRiseCM: 9.2, Impact: "inland"},
			{Province: "Chungcheongnam-do", Lat: 36.52, Lon: 126.80, SeaLevelRiseCM: 11.0, Impact: "West Sea fisheries hit"},
			{Province: "Jeollabuk-do", Lat: 35.72, Lon: 127.15, SeaLevelRiseCM: 10.7, Impact: "Saemangeum coastal ecosystem change"},
			{Province: "Jeollanam-do", Lat: 34.87, Lon: 126.99, SeaLevelRiseCM: 10.5, Impact: "southwest coast stock fluctuation"},
			{Province: "Gyeongsangbuk-do", Lat: 36.49, Lon: 128.89, SeaLevelRiseCM: 11.2, Impact: "East Sea squid catch decline"},
			{Province: "Gyeongsangnam-do", Lat: 35.46, Lon: 128.21, SeaLevelRiseCM: 11.5, Impact: "South Sea species shift"},
			{Province: "Jeju-do", Lat: 33.49, Lon: 126.53, SeaLevelRiseCM: 12.5, Impact: "more subtropical species"},
		},
	}
}

// DefaultRange is the generation range used by the dashboard: from the first
// year of the sea-level record to the current year.
func DefaultRange() YearRange {
	return YearRange{Start: 1990, End: CurrentYear()}
}
