package serializer

import (
	"fmt"
	"sort"
)

// toInternal converts every declared field, checks that referenced rows
// exist and nulls empty values. Field errors are collected, not short-circuited.
func (s *Serializer) toInternal(data map[string]any) (Payload, error) {
	out := make(Payload, len(data))
	ve := &ValidationError{}

	for _, f := range s.fields {
		raw, present := data[f.Name]
		if !present {
			if f.Required && !s.req.Partial {
				ve.Add(f.Name, f.message(MsgRequired))
			}
			continue
		}
		v, err := f.convert(raw)
		if err != nil {
			ve.Add(f.Name, err.Error())
			continue
		}
		out[f.Name] = v
	}

	for _, f := range s.fields {
		if !f.Schema.IsRelation() {
			continue
		}
		ids := relationIDs(out[f.Name])
		if len(ids) == 0 {
			continue
		}
		missing, err := s.missingIDs(f.Schema.Related, ids)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", f.Name, err)
		}
		if len(missing) == 0 {
			continue
		}
		msgField := f
		if f.Child != nil {
			msgField = f.Child
		}
		ve.Add(f.Name, msgField.message(MsgDoesNotExist, "{pk_value}", fmt.Sprint(missing[0])))
	}

	if !ve.empty() {
		return nil, ve
	}
	return NormalizeEmpty(out), nil
}

func relationIDs(v any) []uint {
	switch ids := v.(type) {
	case uint:
		return []uint{ids}
	case []uint:
		return ids
	}
	return nil
}

// missingIDs returns the ids with no row in the related entity, ascending.
func (s *Serializer) missingIDs(related string, ids []uint) ([]uint, error) {
	info, err := s.Registry().Entity(related)
	if err != nil {
		return nil, err
	}
	pk := info.Schema.PrioritizedPrimaryField
	if pk == nil {
		return nil, fmt.Errorf("entity %s has no primary key", related)
	}

	var found []uint
	err = s.DB().Model(info.New().Interface()).
		Where(pk.DBName+" IN ?", ids).
		Pluck(pk.DBName, &found).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{}, len(found))
	for _, id := range found {
		seen[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing, nil
}
