package weather

// ExtractConditions normalizes a decoded provider payload. Any field that is
// missing or of the wrong type takes its default; a non-object payload yields
// a snapshot with only defaults set.
func ExtractConditions(raw any) *Snapshot {
	snapshot := &Snapshot{Condition: "Unknown"}

	payload, ok := raw.(map[string]any)
	if !ok {
		return snapshot
	}

	if list, ok := payload["weather"].([]any); ok && len(list) > 0 {
		if first, ok := list[0].(map[string]any); ok {
			if main, ok := first["main"].(string); ok {
				snapshot.Condition = main
			}
			if desc, ok := first["description"].(string); ok {
				snapshot.Description = desc
			}
		}
	}

	if main, ok := payload["main"].(map[string]any); ok {
		snapshot.Temperature = number(main["temp"])
		snapshot.FeelsLike = number(main["feels_like"])
		snapshot.Humidity = number(main["humidity"])
	}
	if wind, ok := payload["wind"].(map[string]any); ok {
		snapshot.WindSpeed = number(wind["speed"])
	}
	snapshot.Visibility = number(payload["visibility"])
	if rain, ok := payload["rain"].(map[string]any); ok {
		if v := number(rain["1h"]); v != nil {
			snapshot.RainfallLastHour = *v
		}
	}
	return snapshot
}

func number(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	default:
		return nil
	}
}
